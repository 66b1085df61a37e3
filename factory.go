// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbridge

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/peltmark/sqlbridge/dberr"
)

// memorySentinel selects an in-memory, non-persisted database.
const memorySentinel = ":memory:"

// Factory constructs adapters for the primary database and, for migration
// diffing workflows, an optional shadow database. The two are fully
// independent connections with independent locks.
type Factory struct {
	url  string
	opts AdapterOptions
}

// NewFactory returns a factory for the database at the given URL. The URL
// is either "file:<path>", a bare filesystem path, or ":memory:".
func NewFactory(url string, opts AdapterOptions) *Factory {
	return &Factory{url: url, opts: opts}
}

// Connect builds the primary adapter.
func (f *Factory) Connect(ctx context.Context) (*Adapter, error) {
	return openAdapter(ctx, f.url, f.opts)
}

// ConnectToShadowDb builds an independent adapter for the shadow database,
// defaulting to an in-memory database unless a shadow URL was configured.
func (f *Factory) ConnectToShadowDb(ctx context.Context) (*Adapter, error) {
	url := f.opts.ShadowDatabaseURL
	if url == "" {
		url = memorySentinel
	}
	return openAdapter(ctx, url, f.opts)
}

func openAdapter(ctx context.Context, url string, opts AdapterOptions) (*Adapter, error) {
	db, err := sql.Open("sqlite3", dsnFromURL(url))
	if err != nil {
		return nil, dberr.Translate(err)
	}
	// The adapter owns exactly one connection handle for its lifetime.
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, dberr.Translate(err)
	}
	return newAdapter(db, conn, opts), nil
}

// dsnFromURL translates a URL-style connection string into the native
// connection parameter: a "file:" prefix is stripped to obtain a
// filesystem path and an empty or ":memory:" remainder selects an
// in-memory database.
func dsnFromURL(url string) string {
	path := strings.TrimPrefix(url, "file:")
	if path == "" || path == memorySentinel {
		return memorySentinel
	}
	return path
}
