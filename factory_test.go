package sqlbridge_test

import (
	"context"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/peltmark/sqlbridge"
	"github.com/peltmark/sqlbridge/typeconv"
)

func (s *PackageSuite) TestDSNFromURL(c *C) {
	var tests = []struct {
		summary  string
		url      string
		expected string
	}{{
		summary:  "file prefix stripped",
		url:      "file:/tmp/app.db",
		expected: "/tmp/app.db",
	}, {
		summary:  "relative path",
		url:      "file:app.db",
		expected: "app.db",
	}, {
		summary:  "bare path passes through",
		url:      "/tmp/app.db",
		expected: "/tmp/app.db",
	}, {
		summary:  "memory sentinel",
		url:      ":memory:",
		expected: ":memory:",
	}, {
		summary:  "memory sentinel behind file prefix",
		url:      "file::memory:",
		expected: ":memory:",
	}, {
		summary:  "empty url is in-memory",
		url:      "",
		expected: ":memory:",
	}}
	for _, test := range tests {
		c.Assert(sqlbridge.DSNFromURL(test.url), Equals, test.expected, Commentf("%s", test.summary))
	}
}

func (s *PackageSuite) TestConnectFileURL(c *C) {
	path := filepath.Join(c.MkDir(), "app.db")
	factory := sqlbridge.NewFactory("file:"+path, sqlbridge.AdapterOptions{})

	ctx := context.Background()
	adapter, err := factory.Connect(ctx)
	c.Assert(err, IsNil)
	runScript(c, adapter, "CREATE TABLE t (v integer); INSERT INTO t VALUES (1);")
	c.Assert(adapter.Dispose(), IsNil)

	// The data persisted: a fresh adapter over the same URL sees it.
	adapter, err = factory.Connect(ctx)
	c.Assert(err, IsNil)
	defer adapter.Dispose()
	rs, err := adapter.Query(ctx, sqlbridge.Query{SQL: "SELECT v FROM t"})
	c.Assert(err, IsNil)
	c.Assert(rs.Rows, DeepEquals, [][]any{{int64(1)}})
}

// The shadow adapter defaults to an in-memory database and shares no state
// with the primary.
func (s *PackageSuite) TestShadowDefaultsToMemory(c *C) {
	path := filepath.Join(c.MkDir(), "app.db")
	factory := sqlbridge.NewFactory("file:"+path, sqlbridge.AdapterOptions{})

	ctx := context.Background()
	primary, err := factory.Connect(ctx)
	c.Assert(err, IsNil)
	defer primary.Dispose()
	runScript(c, primary, "CREATE TABLE t (v integer);")

	shadow, err := factory.ConnectToShadowDb(ctx)
	c.Assert(err, IsNil)
	defer shadow.Dispose()

	_, err = shadow.Query(ctx, sqlbridge.Query{SQL: "SELECT v FROM t"})
	c.Assert(err, NotNil)

	// The shadow is a working database of its own.
	runScript(c, shadow, "CREATE TABLE shadow_only (v integer);")
	_, err = primary.Query(ctx, sqlbridge.Query{SQL: "SELECT v FROM shadow_only"})
	c.Assert(err, NotNil)
}

func (s *PackageSuite) TestShadowURLConfigured(c *C) {
	dir := c.MkDir()
	shadowPath := filepath.Join(dir, "shadow.db")
	factory := sqlbridge.NewFactory("file:"+filepath.Join(dir, "app.db"), sqlbridge.AdapterOptions{
		ShadowDatabaseURL: "file:" + shadowPath,
	})

	ctx := context.Background()
	shadow, err := factory.ConnectToShadowDb(ctx)
	c.Assert(err, IsNil)
	runScript(c, shadow, "CREATE TABLE t (v integer); INSERT INTO t VALUES (9);")
	c.Assert(shadow.Dispose(), IsNil)

	reopened, err := sqlbridge.NewFactory("file:"+shadowPath, sqlbridge.AdapterOptions{}).Connect(ctx)
	c.Assert(err, IsNil)
	defer reopened.Dispose()
	rs, err := reopened.Query(ctx, sqlbridge.Query{SQL: "SELECT v FROM t"})
	c.Assert(err, IsNil)
	c.Assert(rs.Rows, DeepEquals, [][]any{{int64(9)}})
}

// Both adapters carry the factory's timestamp format.
func (s *PackageSuite) TestShadowInheritsOptions(c *C) {
	factory := sqlbridge.NewFactory(":memory:", sqlbridge.AdapterOptions{
		Timestamps: typeconv.TimestampUnixMillis,
	})

	ctx := context.Background()
	shadow, err := factory.ConnectToShadowDb(ctx)
	c.Assert(err, IsNil)
	defer shadow.Dispose()
	runScript(c, shadow, "CREATE TABLE t (created NUMERIC);")

	_, err = shadow.Execute(ctx, sqlbridge.Query{
		SQL:  "INSERT INTO t VALUES (?)",
		Args: []sqlbridge.TypedArg{arg(typeconv.ArgDateTime, int64(1709296245123))},
	})
	c.Assert(err, IsNil)
	rs, err := shadow.Query(ctx, sqlbridge.Query{SQL: "SELECT created FROM t"})
	c.Assert(err, IsNil)
	c.Assert(rs.Rows, DeepEquals, [][]any{{int64(1709296245123)}})
}
