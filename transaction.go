// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbridge

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/peltmark/sqlbridge/dberr"
)

// ErrTXDone is returned when a terminal transaction is committed or rolled
// back again.
var ErrTXDone = sql.ErrTxDone

// Transaction is a queryable bound to the release of its adapter's
// transaction lock. The BEGIN is issued by StartTransaction; the ORM
// runtime sends COMMIT and ROLLBACK as ordinary statements, so Commit and
// Rollback only mark the transaction terminal and release the lock.
//
// A failed statement inside an open transaction does not roll the
// transaction back: the caller must invoke Rollback explicitly. This keeps
// failure handling predictable for the runtime driving the transaction.
type Transaction struct {
	queryable
	release func()
	done    int32
	id      string
}

func newTransaction(q *queryable, release func()) *Transaction {
	id := uuid.NewString()
	tx := &Transaction{queryable: *q, release: release, id: id}
	tx.log = q.log.With("tx", id)
	return tx
}

// begin opens the transaction on the engine. The lock is already held; it
// is released again if BEGIN fails so a failed start never leaves the
// adapter locked.
func (tx *Transaction) begin(ctx context.Context) error {
	if _, err := tx.conn.ExecContext(ctx, "BEGIN"); err != nil {
		tx.release()
		return dberr.Translate(err)
	}
	tx.log.DebugContext(ctx, "transaction open")
	return nil
}

// Options returns the transaction options negotiated with the ORM runtime.
func (tx *Transaction) Options() TransactionOptions {
	return TransactionOptions{UsePhantomQuery: false}
}

func (tx *Transaction) isDone() bool {
	return atomic.LoadInt32(&tx.done) == 1
}

// Query runs a statement inside the transaction. It fails with ErrTXDone
// once the transaction is terminal.
func (tx *Transaction) Query(ctx context.Context, query Query) (*ResultSet, error) {
	if tx.isDone() {
		return nil, ErrTXDone
	}
	return tx.queryable.Query(ctx, query)
}

// Execute runs a write statement inside the transaction. It fails with
// ErrTXDone once the transaction is terminal.
func (tx *Transaction) Execute(ctx context.Context, query Query) (uint32, error) {
	if tx.isDone() {
		return 0, ErrTXDone
	}
	return tx.queryable.Execute(ctx, query)
}

// setDone marks the transaction terminal. It succeeds exactly once.
func (tx *Transaction) setDone() error {
	if !atomic.CompareAndSwapInt32(&tx.done, 0, 1) {
		return ErrTXDone
	}
	return nil
}

// Commit marks the transaction committed and releases the adapter's
// transaction lock. The engine-side COMMIT has already been sent by the
// runtime as a statement.
func (tx *Transaction) Commit() error {
	if err := tx.setDone(); err != nil {
		return err
	}
	tx.log.Debug("transaction committed")
	tx.release()
	return nil
}

// Rollback marks the transaction rolled back and releases the adapter's
// transaction lock.
func (tx *Transaction) Rollback() error {
	if err := tx.setDone(); err != nil {
		return err
	}
	tx.log.Debug("transaction rolled back")
	tx.release()
	return nil
}
