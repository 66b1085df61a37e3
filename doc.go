/*
Package sqlbridge executes already-planned SQL statements from an ORM runtime
against an embedded SQLite database and returns results in the shape, typing
and error taxonomy the runtime expects.

The package does not plan or rewrite queries. It binds typed arguments to
native engine values, executes, and converts every result value back to the
ORM's logical types, inferring a column's type from its first non-NULL value
when the engine declares none.

# Basics

A Factory turns a connection URL into adapters:

	factory := sqlbridge.NewFactory("file:app.db", sqlbridge.AdapterOptions{})
	adapter, err := factory.Connect(ctx)

An Adapter executes statements and owns the transaction lifecycle:

	rs, err := adapter.Query(ctx, sqlbridge.Query{
		SQL:  "SELECT id, name FROM person WHERE id = ?",
		Args: []sqlbridge.TypedArg{{Type: typeconv.ArgInt64, Value: 1}},
	})

At most one transaction is open per adapter at a time. StartTransaction
issues BEGIN and takes the adapter's transaction lock; Commit and Rollback
release it. COMMIT and ROLLBACK themselves arrive from the ORM as ordinary
statements on the transaction.

Timestamps are surfaced either as ISO-8601 text or as integer milliseconds
since the epoch. The format is chosen once in AdapterOptions and never
inferred per value, because the two representations are not self-describing.
*/
package sqlbridge
