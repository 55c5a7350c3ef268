// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/weiwenchen2022/dbcp/dialer"
)

// fakeDriver is a fake database/sql driver that implements the
// driver.Driver interface, just for testing.
//
// Every connection answers queries starting with SELECT with a single
// row holding 1, and every exec with one affected row. Tests change
// the behavior of one connection by reaching its *fakeConn through
// Conn.Raw.
type fakeDriver struct {
	mu         sync.Mutex // guards 2 following fields
	openCount  int        // conn opens
	closeCount int        // conn closes
}

type fakeError struct {
	Message string
	Wrapped error
}

func (e fakeError) Error() string {
	return e.Message
}

func (e fakeError) Unwrap() error {
	return e.Wrapped
}

type memToucher interface {
	// touchMem reads & writes some memory, to help find data races.
	touchMem()
}

type fakeConn struct {
	driver *fakeDriver // where to return ourselves to
	target string

	// Every operation writes to line to enable the race detector
	// check for data races.
	line int64

	// Stats for tests:
	queries int
	execs   int

	// empty makes queries return no rows, which fails a probe.
	empty bool
	// queryErr is returned by every query.
	queryErr error

	panic string
}

var (
	_ driver.Conn           = (*fakeConn)(nil)
	_ driver.QueryerContext = (*fakeConn)(nil)
	_ driver.ExecerContext  = (*fakeConn)(nil)
	_ driver.Pinger         = (*fakeConn)(nil)
	_ memToucher            = (*fakeConn)(nil)
)

func (c *fakeConn) touchMem() {
	c.line++
}

var fdriver = &fakeDriver{}

const fakeDriverName = "dbcptest"

func init() {
	sql.Register(fakeDriverName, fdriver)
	dialer.Register("test", dialer.DialerFunc(func(target, _, _ string) (*sql.DB, error) {
		hookDialErr.Lock()
		fn := hookDialErr.fn
		hookDialErr.Unlock()
		if fn != nil {
			if err := fn(); err != nil {
				return nil, err
			}
		}
		return sql.Open(fakeDriverName, target)
	}))
}

// hook to simulate connection failures
var hookOpenErr struct {
	sync.Mutex
	fn func() error
}

func setHookOpenErr(fn func() error) {
	hookOpenErr.Lock()
	hookOpenErr.fn = fn
	hookOpenErr.Unlock()
}

// hook to simulate dialer failures
var hookDialErr struct {
	sync.Mutex
	fn func() error
}

func setHookDialErr(fn func() error) {
	hookDialErr.Lock()
	hookDialErr.fn = fn
	hookDialErr.Unlock()
}

func (d *fakeDriver) Open(name string) (driver.Conn, error) {
	hookOpenErr.Lock()
	fn := hookOpenErr.fn
	hookOpenErr.Unlock()
	if fn != nil {
		if err := fn(); err != nil {
			return nil, err
		}
	}

	if strings.HasPrefix(name, "unreachable") {
		return nil, fakeError{Message: "fakedb: dial " + name + ": connection refused"}
	}

	d.mu.Lock()
	d.openCount++
	d.mu.Unlock()

	return &fakeConn{driver: d, target: name}, nil
}

// counts returns the number of connections opened and closed so far.
func (d *fakeDriver) counts() (opens, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openCount, d.closeCount
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	c.touchMem()
	if c.panic == "Prepare" {
		panic(c.panic)
	}
	return &fakeStmt{c: c, q: query}, nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	c.touchMem()
	if c.panic == "Begin" {
		panic(c.panic)
	}
	return fakeTx{c}, nil
}

func (c *fakeConn) Ping(ctx context.Context) error {
	c.touchMem()
	if c.panic == "Ping" {
		panic(c.panic)
	}
	return ctx.Err()
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.touchMem()
	if c.panic == "Query" {
		panic(c.panic)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	if !strings.HasPrefix(strings.ToUpper(query), "SELECT") {
		return nil, fakeError{Message: "fakedb: unsupported query: " + query}
	}

	c.queries++
	rows := &fakeRows{cols: []string{"1"}}
	if !c.empty {
		rows.rows = [][]driver.Value{{int64(1)}}
	}
	return rows, nil
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.touchMem()
	if c.panic == "Exec" {
		panic(c.panic)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.execs++
	return driver.RowsAffected(1), nil
}

func (c *fakeConn) Close() error {
	c.touchMem()
	d := c.driver
	if d == nil {
		return errors.New("fakedb: can't close fakeConn; already closed")
	}
	c.driver = nil

	d.mu.Lock()
	d.closeCount++
	d.mu.Unlock()
	return nil
}

type fakeStmt struct {
	c *fakeConn
	q string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.c.ExecContext(context.Background(), s.q, nil)
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.c.QueryContext(context.Background(), s.q, nil)
}

type fakeTx struct {
	c *fakeConn
}

func (tx fakeTx) Commit() error   { tx.c.touchMem(); return nil }
func (tx fakeTx) Rollback() error { tx.c.touchMem(); return nil }

type fakeRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}
