// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbridge

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/peltmark/sqlbridge/dberr"
	"github.com/peltmark/sqlbridge/typeconv"
)

// Provider is the name of the database provider this package bridges to.
const Provider = "sqlite"

// AdapterName identifies this adapter to the ORM runtime's capability
// descriptor.
const AdapterName = "sqlbridge"

// AdapterOptions configures adapters built by a Factory. The zero value is
// usable: no shadow database, ISO-8601 timestamps, default logger.
type AdapterOptions struct {
	// ShadowDatabaseURL, when set, is used by ConnectToShadowDb instead of
	// an in-memory database.
	ShadowDatabaseURL string
	// Timestamps selects the wire representation of date/time values for
	// every adapter built with these options. It is fixed at construction.
	Timestamps typeconv.TimestampFormat
	// Logger receives a structured trace of every statement before it is
	// executed. Defaults to slog.Default.
	Logger *slog.Logger
}

// TransactionOptions is returned to the ORM runtime when a transaction is
// started.
type TransactionOptions struct {
	// UsePhantomQuery tells the runtime to display BEGIN/COMMIT to the
	// caller without sending them. Always false here: a real BEGIN is
	// issued and the runtime sends COMMIT/ROLLBACK as ordinary statements.
	UsePhantomQuery bool
}

// Adapter owns one engine connection handle and the lock that serializes
// transactions on it. Adapters are built by a Factory and must be released
// with Dispose; behavior of any call after Dispose is undefined.
type Adapter struct {
	queryable
	db *sql.DB
	// txLock serializes StartTransaction so that at most one transaction
	// is open on the connection at any time. Plain queries are not
	// serialized by it.
	txLock sync.Mutex
	id     string
}

func newAdapter(db *sql.DB, conn *sql.Conn, opts AdapterOptions) *Adapter {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	return &Adapter{
		queryable: queryable{
			conn:   conn,
			stmts:  newStmtCache(),
			format: opts.Timestamps,
			log:    log.With("adapter", id),
		},
		db: db,
		id: id,
	}
}

// Provider returns the provider name of the underlying engine.
func (a *Adapter) Provider() string { return Provider }

// AdapterName returns the identity of this adapter implementation.
func (a *Adapter) AdapterName() string { return AdapterName }

// StartTransaction begins a transaction on the adapter's connection. The
// requested isolation level must be empty or "serializable", the only level
// the engine provides; anything else fails before the lock is touched or
// any SQL is issued. If another transaction is open the call blocks until
// it commits or rolls back.
func (a *Adapter) StartTransaction(ctx context.Context, isolationLevel string) (*Transaction, error) {
	if !supportedIsolationLevel(isolationLevel) {
		return nil, dberr.InvalidIsolationLevel(isolationLevel)
	}
	a.txLock.Lock()
	tx := newTransaction(&a.queryable, a.txLock.Unlock)
	if err := tx.begin(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

func supportedIsolationLevel(level string) bool {
	return level == "" || strings.EqualFold(level, "serializable")
}

// Dispose closes the prepared-statement cache and the connection handle.
// The adapter must not be used afterwards.
func (a *Adapter) Dispose() error {
	errs := []error{a.stmts.close(), a.conn.Close(), a.db.Close()}
	return errors.Join(errs...)
}
