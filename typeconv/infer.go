// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeconv

import (
	"strings"
	"time"
)

// FromDeclaredType maps a declared column type from the engine's schema
// metadata to a logical ColumnType. The declared type may be absent or
// unreliable, notably for computed and aggregate columns, function results
// and literal selects, in which case ColumnUnknown is returned and the
// caller falls back to value-shape inference.
func FromDeclaredType(declared string) ColumnType {
	declared = strings.ToUpper(strings.TrimSpace(declared))
	if declared == "" {
		return ColumnUnknown
	}
	switch {
	case strings.Contains(declared, "BOOL"):
		return ColumnBoolean
	case strings.Contains(declared, "BIGINT"), declared == "INT8", declared == "UNSIGNED BIG INT":
		return ColumnInt64
	case strings.Contains(declared, "INT"):
		return ColumnInt32
	case strings.Contains(declared, "JSON"):
		return ColumnJSON
	case strings.Contains(declared, "CHAR"), strings.Contains(declared, "CLOB"), strings.Contains(declared, "TEXT"):
		return ColumnText
	case strings.Contains(declared, "BLOB"):
		return ColumnBytes
	case strings.Contains(declared, "REAL"), strings.Contains(declared, "FLOA"), strings.Contains(declared, "DOUB"):
		return ColumnDouble
	// NUMERIC is deliberately absent: it is the engine's catch-all
	// affinity and says nothing about the logical type, so NUMERIC
	// columns fall through to value-shape inference.
	case strings.Contains(declared, "DEC"):
		return ColumnNumeric
	case strings.Contains(declared, "DATE"), strings.Contains(declared, "TIME"):
		return ColumnDateTime
	}
	return ColumnUnknown
}

// FromValue infers a logical type from the shape of a single runtime value
// as returned by the driver. Integers always infer ColumnInt64: whether an
// integer column holds booleans is a declared-type decision and is never
// guessed from values.
func FromValue(value any) ColumnType {
	switch value.(type) {
	case nil:
		return ColumnNull
	case int64:
		return ColumnInt64
	case float64:
		return ColumnDouble
	case bool:
		return ColumnBoolean
	case string:
		return ColumnText
	case []byte:
		return ColumnBytes
	case time.Time:
		return ColumnDateTime
	}
	return ColumnUnknown
}

// InferColumnTypes resolves the logical type of every column of a buffered
// row set. A column with a recognized declared type uses it. Otherwise the
// type is inferred from the first non-NULL value observed in that column
// across the rows, and that inferred type applies to every row of the
// column, including later rows whose values look different. A column that
// is undeclared and all-NULL resolves to ColumnUnknown.
func InferColumnTypes(declared []string, rows [][]any) []ColumnType {
	types := make([]ColumnType, len(declared))
	for i, decl := range declared {
		types[i] = FromDeclaredType(decl)
	}
	for i, t := range types {
		if t != ColumnUnknown {
			continue
		}
		for _, row := range rows {
			if row[i] == nil {
				continue
			}
			types[i] = FromValue(row[i])
			break
		}
	}
	return types
}
