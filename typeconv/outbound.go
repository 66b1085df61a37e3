// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeconv

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/peltmark/sqlbridge/dberr"
)

// BindArg converts a query argument of the declared type into the narrowest
// native value the engine accepts. nil binds as NULL for every type. A value
// that cannot be represented losslessly in the target native type is a type
// mismatch.
func BindArg(argType ArgType, value any, format TimestampFormat) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch argType {
	case ArgText:
		return bindText(value)
	case ArgInt32, ArgInt64:
		return bindInt(value)
	case ArgDouble:
		return bindDouble(value)
	case ArgNumeric:
		return bindNumeric(value)
	case ArgBoolean:
		return bindBoolean(value)
	case ArgDateTime:
		t, err := parseTimestamp(value)
		if err != nil {
			return nil, err
		}
		return formatTimestamp(t, format), nil
	case ArgJSON:
		return bindJSON(value)
	case ArgBytes:
		return bindBytes(value)
	}
	return nil, dberr.Mismatch("unhandled argument type %s", argType)
}

func bindText(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return nil, dberr.Mismatch("cannot bind %T as text", value)
}

// bindInt binds integers as native signed 64-bit values. Big integers are
// preserved exactly while they fit the engine's integer range and rejected
// beyond it; they are never coerced through floating-point.
func bindInt(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, dberr.Mismatch("cannot bind %d, out of range for a 64-bit integer", v)
		}
		return int64(v), nil
	case *big.Int:
		if !v.IsInt64() {
			return nil, dberr.Mismatch("cannot bind %s, out of range for a 64-bit integer", v)
		}
		return v.Int64(), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, dberr.Mismatch("cannot bind %q as an integer", v)
		}
		return n, nil
	case json.Number:
		return bindInt(string(v))
	}
	return nil, dberr.Mismatch("cannot bind %T as an integer", value)
}

func bindDouble(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, dberr.Mismatch("cannot bind %q as a double", v)
		}
		return f, nil
	}
	return nil, dberr.Mismatch("cannot bind %T as a double", value)
}

// bindNumeric binds decimals as exact decimal text. Non-finite values have
// no decimal representation and are rejected.
func bindNumeric(value any) (any, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.String(), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, dberr.Mismatch("cannot bind %q as a decimal", v)
		}
		return d.String(), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, dberr.Mismatch("cannot bind non-finite %v as a decimal", v)
		}
		return decimal.NewFromFloat(v).String(), nil
	case int64:
		return decimal.NewFromInt(v).String(), nil
	case int:
		return decimal.NewFromInt(int64(v)).String(), nil
	}
	return nil, dberr.Mismatch("cannot bind %T as a decimal", value)
}

func bindBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case int64:
		if v == 0 || v == 1 {
			return v, nil
		}
	}
	return nil, dberr.Mismatch("cannot bind %T as a boolean", value)
}

func bindJSON(value any) (any, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return validJSONText(v)
	case []byte:
		return validJSONText(v)
	case string:
		return validJSONText([]byte(v))
	}
	serialized, err := json.Marshal(value)
	if err != nil {
		return nil, dberr.Mismatch("cannot bind %T as JSON: %s", value, err)
	}
	return string(serialized), nil
}

func validJSONText(raw []byte) (any, error) {
	if !json.Valid(raw) {
		return nil, dberr.Mismatch("cannot bind malformed JSON")
	}
	return string(raw), nil
}

func bindBytes(value any) (any, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, dberr.Mismatch("cannot bind %T as bytes", value)
}
