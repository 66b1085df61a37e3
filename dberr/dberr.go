// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package dberr defines the closed set of errors surfaced to callers of
// sqlbridge and the translation from engine errors onto it.
package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Kind discriminates the cases of the error taxonomy. Every error returned
// by sqlbridge to the ORM layer is an *Error carrying exactly one Kind, so
// callers can handle the set exhaustively.
type Kind int

const (
	// KindRaw is an engine error that matches no other case. The original
	// code and message are preserved.
	KindRaw Kind = iota
	// KindInvalidIsolationLevel is returned when a transaction is started
	// with an isolation level the engine cannot provide.
	KindInvalidIsolationLevel
	// KindUniqueConstraint covers UNIQUE and PRIMARY KEY violations.
	KindUniqueConstraint
	// KindForeignKeyConstraint covers FOREIGN KEY violations.
	KindForeignKeyConstraint
	// KindNotNullConstraint covers NOT NULL violations.
	KindNotNullConstraint
	// KindTypeMismatch is returned when a value cannot be losslessly
	// converted in either direction, including JSON parse failures.
	KindTypeMismatch
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIsolationLevel:
		return "invalid isolation level"
	case KindUniqueConstraint:
		return "unique constraint violation"
	case KindForeignKeyConstraint:
		return "foreign key constraint violation"
	case KindNotNullConstraint:
		return "not null constraint violation"
	case KindTypeMismatch:
		return "type mismatch"
	}
	return "raw database error"
}

// Error is the single error type returned across the sqlbridge boundary.
type Error struct {
	Kind Kind
	// Code and ExtendedCode are the engine result codes, when the error
	// originated in the engine.
	Code         int
	ExtendedCode int
	// Columns holds the qualified columns named by a constraint failure,
	// when the engine supplied them.
	Columns []string
	// Message is the underlying message, engine-original for KindRaw.
	Message string
}

func (e *Error) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s on %s: %s", e.Kind, strings.Join(e.Columns, ", "), e.Message)
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, &Error{Kind: k}) can be used to test for a taxonomy case.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Mismatch returns a KindTypeMismatch error with a formatted message.
func Mismatch(format string, args ...any) *Error {
	return &Error{Kind: KindTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

// InvalidIsolationLevel returns the error for an unsupported isolation
// level request.
func InvalidIsolationLevel(level string) *Error {
	return &Error{Kind: KindInvalidIsolationLevel, Message: fmt.Sprintf("%q is not supported, the engine only provides SERIALIZABLE", level)}
}

// Translate maps an engine error onto the taxonomy. It is a pure function:
// the same input error shape always yields the same case. Errors that are
// already *Error values pass through unchanged, nil maps to nil, and
// anything unrecognized is wrapped as KindRaw with its message preserved.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &Error{Kind: KindRaw, Message: err.Error()}
	}

	translated := &Error{
		Kind:         KindRaw,
		Code:         int(sqliteErr.Code),
		ExtendedCode: int(sqliteErr.ExtendedCode),
		Message:      sqliteErr.Error(),
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		translated.Kind = KindUniqueConstraint
		translated.Columns = constraintColumns(translated.Message)
	case sqlite3.ErrConstraintForeignKey:
		translated.Kind = KindForeignKeyConstraint
	case sqlite3.ErrConstraintNotNull:
		translated.Kind = KindNotNullConstraint
		translated.Columns = constraintColumns(translated.Message)
	default:
		if sqliteErr.Code == sqlite3.ErrMismatch {
			translated.Kind = KindTypeMismatch
		}
	}
	return translated
}

// constraintColumns extracts the qualified column list from messages of the
// form "UNIQUE constraint failed: person.email, person.name".
func constraintColumns(message string) []string {
	_, list, ok := strings.Cut(message, "constraint failed: ")
	if !ok {
		return nil
	}
	var columns []string
	for _, column := range strings.Split(list, ",") {
		column = strings.TrimSpace(column)
		if column != "" {
			columns = append(columns, column)
		}
	}
	return columns
}
