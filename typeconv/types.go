// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package typeconv converts values between the representations used by the
// embedded SQLite engine and the logical types expected by the ORM runtime.
// It owns the logical column type enumeration, the mapping from declared
// column types, the value-shape inference used when no type is declared, and
// the conversion of values in both directions.
package typeconv

// ColumnType is the logical type of a result column as surfaced to the ORM.
// It is distinct from the engine's storage class: a BOOLEAN column stored as
// integers is surfaced as ColumnBoolean, and a DECIMAL column stored as text
// is surfaced as ColumnNumeric.
type ColumnType int

const (
	// ColumnUnknown is used when no type was declared and every value in
	// the column was NULL.
	ColumnUnknown ColumnType = iota
	ColumnNull
	ColumnText
	ColumnInt32
	ColumnInt64
	ColumnDouble
	// ColumnNumeric is a decimal surfaced as exact decimal text.
	ColumnNumeric
	ColumnBoolean
	ColumnDateTime
	ColumnJSON
	ColumnBytes
)

func (t ColumnType) String() string {
	switch t {
	case ColumnNull:
		return "null"
	case ColumnText:
		return "text"
	case ColumnInt32:
		return "int"
	case ColumnInt64:
		return "bigint"
	case ColumnDouble:
		return "double"
	case ColumnNumeric:
		return "decimal"
	case ColumnBoolean:
		return "bool"
	case ColumnDateTime:
		return "datetime"
	case ColumnJSON:
		return "json"
	case ColumnBytes:
		return "bytes"
	}
	return "unknown"
}

// ArgType is the declared type of a bound query argument.
type ArgType int

const (
	ArgText ArgType = iota
	ArgInt32
	ArgInt64
	ArgDouble
	ArgNumeric
	ArgBoolean
	ArgDateTime
	ArgJSON
	ArgBytes
)

func (t ArgType) String() string {
	switch t {
	case ArgInt32:
		return "int"
	case ArgInt64:
		return "bigint"
	case ArgDouble:
		return "double"
	case ArgNumeric:
		return "decimal"
	case ArgBoolean:
		return "bool"
	case ArgDateTime:
		return "datetime"
	case ArgJSON:
		return "json"
	case ArgBytes:
		return "bytes"
	}
	return "text"
}

// TimestampFormat selects the wire representation of date/time values. The
// two formats are not self-describing so the format is fixed per adapter
// at construction and never inferred per value.
type TimestampFormat int

const (
	// TimestampISO8601 represents timestamps as RFC 3339 text in UTC with
	// millisecond precision. This is the default.
	TimestampISO8601 TimestampFormat = iota
	// TimestampUnixMillis represents timestamps as signed integer
	// milliseconds since the Unix epoch.
	TimestampUnixMillis
)
