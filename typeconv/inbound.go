// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeconv

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/peltmark/sqlbridge/dberr"
)

// ColumnValue converts a single driver value into the representation the
// ORM wire format requires for the given logical column type. NULL converts
// to nil for every type. A value that cannot be represented losslessly in
// the column's logical type is a type mismatch: values are never silently
// reinterpreted per row once a column's type is fixed.
func ColumnValue(value any, columnType ColumnType, format TimestampFormat) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch columnType {
	case ColumnText:
		return textValue(value)
	case ColumnInt32, ColumnInt64:
		return intValue(value)
	case ColumnDouble:
		return doubleValue(value)
	case ColumnNumeric:
		return numericValue(value)
	case ColumnBoolean:
		return booleanValue(value)
	case ColumnDateTime:
		t, err := parseTimestamp(value)
		if err != nil {
			return nil, err
		}
		return formatTimestamp(t, format), nil
	case ColumnJSON:
		return jsonValue(value)
	case ColumnBytes:
		return bytesValue(value)
	case ColumnNull, ColumnUnknown:
		// Columns resolved to these types only ever held NULLs, which were
		// handled above; a value here means the engine returned something
		// the column's type cannot describe.
		return value, nil
	}
	return nil, dberr.Mismatch("unhandled column type %s", columnType)
}

func textValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return nil, dberr.Mismatch("cannot read %T as text", value)
}

// intValue reads integer-class columns. Values arrive as int64 from the
// engine so full 64-bit precision is preserved; a float is accepted only
// when it is an exact integer that fits without loss.
func intValue(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v), nil
		}
		return nil, dberr.Mismatch("cannot read %v as an integer without loss", v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, dberr.Mismatch("cannot read %q as an integer", v)
		}
		return n, nil
	case []byte:
		return intValue(string(v))
	}
	return nil, dberr.Mismatch("cannot read %T as an integer", value)
}

func doubleValue(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, dberr.Mismatch("cannot read %q as a double", v)
		}
		return f, nil
	case []byte:
		return doubleValue(string(v))
	}
	return nil, dberr.Mismatch("cannot read %T as a double", value)
}

// numericValue surfaces decimals as exact decimal text rather than
// floating-point to avoid precision loss.
func numericValue(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return decimal.NewFromInt(v).String(), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, dberr.Mismatch("cannot read non-finite %v as a decimal", v)
		}
		return decimal.NewFromFloat(v).String(), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, dberr.Mismatch("cannot read %q as a decimal", v)
		}
		return d.String(), nil
	case []byte:
		return numericValue(string(v))
	}
	return nil, dberr.Mismatch("cannot read %T as a decimal", value)
}

func booleanValue(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, dberr.Mismatch("cannot read %d as a boolean, want 0 or 1", v)
	}
	return nil, dberr.Mismatch("cannot read %T as a boolean", value)
}

// jsonValue validates stored JSON before surfacing it. Malformed JSON is a
// type mismatch, never returned as raw text.
func jsonValue(value any) (any, error) {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return nil, dberr.Mismatch("cannot read %T as JSON", value)
	}
	if !json.Valid(raw) {
		return nil, dberr.Mismatch("cannot parse stored value as JSON")
	}
	return json.RawMessage(raw), nil
}

func bytesValue(value any) (any, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, dberr.Mismatch("cannot read %T as bytes", value)
}
