// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbridge

import (
	"context"
	"database/sql"
	"log/slog"
	"math"

	"github.com/peltmark/sqlbridge/dberr"
	"github.com/peltmark/sqlbridge/typeconv"
)

// Query is a planned SQL statement together with its ordered typed
// arguments. A Query is immutable once submitted.
type Query struct {
	SQL  string
	Args []TypedArg
}

// TypedArg is a bound parameter value with the argument type the ORM
// declared for it.
type TypedArg struct {
	Type  typeconv.ArgType
	Value any
}

// ResultSet is the ORM-facing result of a statement. Types is parallel to
// Columns, and every row is aligned to Columns. Row order is the engine's
// return order.
type ResultSet struct {
	Columns []string
	Types   []typeconv.ColumnType
	Rows    [][]any
}

// queryable executes a single SQL statement against a connection handle.
// It is the unit both the adapter and transactions are built from: they
// share the connection, the prepared-statement cache and the timestamp
// format of the adapter that created them.
type queryable struct {
	conn   *sql.Conn
	stmts  *stmtCache
	format typeconv.TimestampFormat
	log    *slog.Logger
}

// Query binds the arguments, executes the statement and converts every
// result value to its logical type. Statements that produce no columns
// return an empty ResultSet. On any failure no partially-converted result
// is returned.
func (q *queryable) Query(ctx context.Context, query Query) (*ResultSet, error) {
	q.trace(ctx, "query", query)
	params, err := bindParams(query.Args, q.format)
	if err != nil {
		return nil, err
	}
	stmt, err := q.stmts.prepare(ctx, q.conn, query.SQL)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	rows, err := stmt.QueryContext(ctx, params...)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, dberr.Translate(err)
	}
	if len(columns) == 0 {
		// A pure write run through Query. The statement only executes as
		// it is stepped, so drive it to completion before returning the
		// empty result set.
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return nil, dberr.Translate(err)
		}
		return &ResultSet{Columns: []string{}, Types: []typeconv.ColumnType{}, Rows: [][]any{}}, nil
	}
	declared, err := declaredTypes(rows)
	if err != nil {
		return nil, dberr.Translate(err)
	}

	// The full row set is buffered before conversion: a column without a
	// declared type takes its logical type from the first non-NULL value
	// observed anywhere in the column.
	var raw [][]any
	for rows.Next() {
		row := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, dberr.Translate(err)
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Translate(err)
	}

	types := typeconv.InferColumnTypes(declared, raw)
	converted := make([][]any, len(raw))
	for i, row := range raw {
		converted[i] = make([]any, len(columns))
		for j, value := range row {
			converted[i][j], err = typeconv.ColumnValue(value, types[j], q.format)
			if err != nil {
				return nil, err
			}
		}
	}
	return &ResultSet{Columns: columns, Types: types, Rows: converted}, nil
}

// Execute binds the arguments, executes the statement and returns the
// number of rows changed. The count is saturated at MaxUint32: the contract
// with the ORM layer caps the value at 32 bits even though the engine can
// report wider counts.
func (q *queryable) Execute(ctx context.Context, query Query) (uint32, error) {
	q.trace(ctx, "execute", query)
	params, err := bindParams(query.Args, q.format)
	if err != nil {
		return 0, err
	}
	stmt, err := q.stmts.prepare(ctx, q.conn, query.SQL)
	if err != nil {
		return 0, dberr.Translate(err)
	}
	result, err := stmt.ExecContext(ctx, params...)
	if err != nil {
		return 0, dberr.Translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dberr.Translate(err)
	}
	return clampRowsAffected(affected), nil
}

// RunScript executes multi-statement SQL with no parameter binding and no
// result capture. It is used for schema and DDL application.
func (q *queryable) RunScript(ctx context.Context, script string) error {
	q.trace(ctx, "script", Query{SQL: script})
	if _, err := q.conn.ExecContext(ctx, script); err != nil {
		return dberr.Translate(err)
	}
	return nil
}

// bindParams converts the typed arguments to native engine bind values.
func bindParams(args []TypedArg, format typeconv.TimestampFormat) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make([]any, len(args))
	for i, arg := range args {
		value, err := typeconv.BindArg(arg.Type, arg.Value, format)
		if err != nil {
			return nil, err
		}
		params[i] = value
	}
	return params, nil
}

// declaredTypes reads the engine's declared type for every column. The
// declared type is empty for computed and aggregate columns, function
// results and literal selects.
func declaredTypes(rows *sql.Rows) ([]string, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	declared := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		declared[i] = ct.DatabaseTypeName()
	}
	return declared, nil
}

// clampRowsAffected narrows the engine's 64-bit change count to the 32-bit
// bound of the ORM contract, saturating rather than wrapping.
func clampRowsAffected(n int64) uint32 {
	if n <= 0 {
		return 0
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// trace logs a structured record of the statement and parameters before
// execution. Diagnostic only, no behavioral effect.
func (q *queryable) trace(ctx context.Context, op string, query Query) {
	if !q.log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	params := make([]any, len(query.Args))
	for i, arg := range query.Args {
		params[i] = arg.Value
	}
	q.log.DebugContext(ctx, "executing statement", "op", op, "sql", query.SQL, "params", params)
}
