// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbridge

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// prepareSubstrate is an object that statements can be prepared on, e.g. a
// sql.Conn or sql.Tx.
type prepareSubstrate interface {
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}

// stmtCache caches the sql.Stmt prepared for each SQL text on an adapter's
// connection. The ORM runtime resubmits the same planned statements many
// times, so preparing once per text and reusing the handle avoids repeated
// engine-side compilation.
//
// The mutex must be held when accessing stmts.
type stmtCache struct {
	mutex sync.RWMutex
	stmts map[string]*sql.Stmt
}

func newStmtCache() *stmtCache {
	return &stmtCache{stmts: map[string]*sql.Stmt{}}
}

// prepare returns the cached statement for the SQL text, preparing it on
// the substrate first if it has not been seen before.
func (sc *stmtCache) prepare(ctx context.Context, ps prepareSubstrate, sqlText string) (*sql.Stmt, error) {
	sc.mutex.RLock()
	stmt, ok := sc.stmts[sqlText]
	sc.mutex.RUnlock()
	if ok {
		return stmt, nil
	}
	stmt, err := ps.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	sc.mutex.Lock()
	// Check if a statement has been inserted by someone else since we last
	// checked.
	stmtAlt, ok := sc.stmts[sqlText]
	if ok {
		stmt.Close()
		stmt = stmtAlt
	} else {
		sc.stmts[sqlText] = stmt
	}
	sc.mutex.Unlock()
	return stmt, nil
}

// close closes every cached statement and empties the cache.
func (sc *stmtCache) close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	var errs []error
	for _, stmt := range sc.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	sc.stmts = map[string]*sql.Stmt{}
	return errors.Join(errs...)
}
