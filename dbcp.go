// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbcp maintains a bounded pool of database connections for
// efficient re-use.
//
// A Pool is built from a Config by a Builder. It opens MinPoolCache
// connections up front and never holds more than MaxPoolSize. Pool.Conn
// hands out a *Conn, which wraps one physical connection; Conn.Close
// probes the connection and gives it back to the pool, which keeps it
// for the next caller or replaces it with a fresh one if the probe
// failed.
//
// Connections are opened through dialers registered in package dialer,
// usually by importing one of its subpackages for side effects.
package dbcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weiwenchen2022/dbcp/dialer"
)

// nowFunc returns the current time; it's overridden in tests.
var nowFunc = time.Now

// Pool is a bounded pool of database connections.
// It's safe for concurrent use by multiple goroutines.
//
// Checkout, release and refill are serialized by a single mutex, and
// connections the pool needs are opened while it is held. Nothing waits
// for capacity: when none is available Conn returns ErrNoConnAvailable.
type Pool struct {
	cfg       Config
	validator *Validator
	logger    *zap.Logger

	mu       sync.Mutex    // protects following fields
	idle     []*driverConn // ready connections; checkout takes idle[0], release appends
	borrowed map[*driverConn]struct{}
	closed   bool

	numCreated   int64 // Total number of connections opened.
	numDestroyed int64 // Total number of connections closed.
	numReplaced  int64 // Total number of connections replaced after failing their probe.
	numRefills   int64 // Total number of refills started by a checkout.
	numExhausted int64 // Total number of checkouts refused for lack of capacity.
}

// driverConn is one physical connection: a *sql.DB limited to a single
// connection and the *sql.Conn pinned to it.
type driverConn struct {
	id        string
	createdAt time.Time

	db *sql.DB
	ci *sql.Conn
}

func (dc *driverConn) close() error {
	err := dc.ci.Close()
	if err1 := dc.db.Close(); err == nil {
		err = err1
	}
	return err
}

func newPool(cfg Config, v *Validator, logger *zap.Logger) *Pool {
	return &Pool{
		cfg:       cfg,
		validator: v,
		logger: logger.With(
			zap.String("component", "dbcp"),
			zap.String("driver", cfg.Driver),
		),
		idle:     make([]*driverConn, 0, cfg.MinPoolCache),
		borrowed: make(map[*driverConn]struct{}),
	}
}

// openConn opens a new physical connection. p.mu must be held.
func (p *Pool) openConn(ctx context.Context) (*driverConn, error) {
	d, ok := dialer.Lookup(p.cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownDriver, p.cfg.Driver)
	}

	db, err := d.Open(p.cfg.Target, p.cfg.Username, p.cfg.Password)
	if err != nil {
		return nil, &ConnectError{Driver: p.cfg.Driver, Err: err}
	}
	if db == nil {
		return nil, &ConnectError{Driver: p.cfg.Driver, Err: errors.New("dialer returned a nil *sql.DB")}
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ci, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, &ConnectError{Driver: p.cfg.Driver, Err: err}
	}

	dc := &driverConn{
		id:        uuid.NewString(),
		createdAt: nowFunc(),
		db:        db,
		ci:        ci,
	}
	p.numCreated++
	p.logger.Debug("connection opened", zap.String("conn_id", dc.id))
	return dc, nil
}

// destroyLocked closes dc, which must already be out of both sets.
func (p *Pool) destroyLocked(dc *driverConn) {
	p.numDestroyed++
	err := dc.close()
	p.logger.Debug("connection closed",
		zap.String("conn_id", dc.id),
		zap.Duration("age", nowFunc().Sub(dc.createdAt)),
		zap.Error(err),
	)
}

// fillLocked opens n connections onto the tail of the idle set.
// Connections opened before a failure stay in the idle set.
func (p *Pool) fillLocked(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		dc, err := p.openConn(ctx)
		if err != nil {
			return err
		}
		p.idle = append(p.idle, dc)
	}
	return nil
}

// refillSizeLocked returns how many connections a refill opens:
// MinPoolCache, at least one, and never past MaxPoolSize.
func (p *Pool) refillSizeLocked() int {
	n := p.cfg.MinPoolCache
	if n < 1 {
		n = 1
	}
	if room := p.cfg.MaxPoolSize - len(p.idle) - len(p.borrowed); n > room {
		n = room
	}
	return n
}

func (p *Pool) statusLocked() Status {
	return deriveStatus(len(p.idle), len(p.borrowed), p.cfg.MinPoolCache, p.cfg.MaxPoolSize)
}

// Status returns the pool's current capacity state.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

// Config returns a copy of the configuration the pool was built from.
func (p *Pool) Config() Config {
	return p.cfg
}

// Conn checks out a connection.
//
// If the idle set is empty and capacity remains, Conn first opens a new
// batch of connections, using ctx for the connect. If the pool is full,
// or too close to MaxPoolSize to keep MinPoolCache in reserve, Conn
// returns ErrNoConnAvailable at once.
//
// Every Conn must be returned to the pool after use by calling
// Conn.Close.
func (p *Pool) Conn(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	switch status := p.statusLocked(); status {
	case StatusFullPool, StatusWaitingForFill:
		p.numExhausted++
		p.logger.Debug("no connection available",
			zap.Stringer("status", status),
			zap.Int("borrowed", len(p.borrowed)),
		)
		return nil, ErrNoConnAvailable
	case StatusFullCache:
		n := p.refillSizeLocked()
		p.numRefills++
		p.logger.Debug("refilling idle connections", zap.Int("count", n))
		if err := p.fillLocked(ctx, n); err != nil {
			return nil, err
		}
	}

	dc := p.idle[0]
	p.idle[0] = nil
	p.idle = p.idle[1:]
	p.borrowed[dc] = struct{}{}

	return &Conn{p: p, dc: dc}, nil
}

// putConnHook is a hook for testing.
var putConnHook func(*Pool, *driverConn)

// putConn takes dc back from a borrower. A valid connection goes to
// the tail of the idle set; an invalid one is closed and a new one takes
// its place. A connection that is not borrowed is ignored.
func (p *Pool) putConn(ctx context.Context, dc *driverConn, valid bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.borrowed[dc]; !ok {
		return nil
	}
	delete(p.borrowed, dc)

	if p.closed {
		p.destroyLocked(dc)
		return nil
	}

	if valid {
		if putConnHook != nil {
			putConnHook(p, dc)
		}
		p.idle = append(p.idle, dc)
		return nil
	}

	p.logger.Warn("connection failed validation, replacing it", zap.String("conn_id", dc.id))
	p.destroyLocked(dc)

	nc, err := p.openConn(ctx)
	if err != nil {
		p.logger.Error("replacement connection failed", zap.Error(err))
		return err
	}
	p.idle = append(p.idle, nc)
	p.numReplaced++
	return nil
}

// Close closes the pool's idle connections. Borrowed connections are
// closed as they are released, and Conn returns ErrPoolClosed from now on.
// Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed { // Make Pool.Close idempotent
		p.mu.Unlock()
		return nil
	}

	closing := p.idle
	p.idle = nil
	p.closed = true
	p.numDestroyed += int64(len(closing))
	borrowed := len(p.borrowed)
	p.mu.Unlock()

	var err error
	for _, dc := range closing {
		if err1 := dc.close(); err1 != nil {
			err = err1
		}
	}

	p.logger.Info("pool closed",
		zap.Int("closed", len(closing)),
		zap.Int("still_borrowed", borrowed),
	)
	return err
}

// PoolStats contains pool statistics.
type PoolStats struct {
	MaxPoolSize  int // Ceiling on idle plus borrowed connections.
	MinPoolCache int // Connections opened up front and per refill.

	// Pool Status
	Idle     int    // The number of idle connections.
	Borrowed int    // The number of connections checked out.
	Status   Status // The status the next checkout would see.

	// Counters
	Created   int64 // The total number of connections opened.
	Destroyed int64 // The total number of connections closed.
	Replaced  int64 // The total number of connections replaced after a failed probe.
	Refills   int64 // The total number of refills started by a checkout.
	Exhausted int64 // The total number of checkouts refused with ErrNoConnAvailable.
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		MaxPoolSize:  p.cfg.MaxPoolSize,
		MinPoolCache: p.cfg.MinPoolCache,

		Idle:     len(p.idle),
		Borrowed: len(p.borrowed),
		Status:   p.statusLocked(),

		Created:   p.numCreated,
		Destroyed: p.numDestroyed,
		Replaced:  p.numReplaced,
		Refills:   p.numRefills,
		Exhausted: p.numExhausted,
	}
}

// Conn is a connection checked out of a Pool.
//
// A Conn must call Close to return the connection to the pool. After a
// call to Close, all operations on the connection fail with ErrConnDone.
//
// Rows, statements and transactions obtained through a Conn must be
// closed, committed or rolled back before Close.
type Conn struct {
	p *Pool

	// closemu prevents the connection from being released while there
	// is an active operation. It is held for read during operations
	// and exclusively during Close.
	closemu sync.RWMutex

	// dc is owned until Close, at which point it's returned to the pool.
	dc *driverConn

	// done transitions from false to true exactly once, on Close.
	// Once done, all operations fail with ErrConnDone.
	done atomic.Bool
}

// grabConn returns the connection and the function that must be called
// when the operation completes.
func (c *Conn) grabConn() (*driverConn, func(), error) {
	c.closemu.RLock()
	if c.done.Load() {
		c.closemu.RUnlock()
		return nil, nil, ErrConnDone
	}
	return c.dc, c.closemu.RUnlock, nil
}

// ExecContext executes a query without returning any rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dc, release, err := c.grabConn()
	if err != nil {
		return nil, err
	}
	defer release()

	return dc.ci.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	dc, release, err := c.grabConn()
	if err != nil {
		return nil, err
	}
	defer release()

	return dc.ci.QueryContext(ctx, query, args...)
}

// PrepareContext creates a prepared statement bound to the connection.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	dc, release, err := c.grabConn()
	if err != nil {
		return nil, err
	}
	defer release()

	return dc.ci.PrepareContext(ctx, query)
}

// BeginTx starts a transaction on the connection.
func (c *Conn) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	dc, release, err := c.grabConn()
	if err != nil {
		return nil, err
	}
	defer release()

	return dc.ci.BeginTx(ctx, opts)
}

// PingContext verifies the connection is still alive.
func (c *Conn) PingContext(ctx context.Context) error {
	dc, release, err := c.grabConn()
	if err != nil {
		return err
	}
	defer release()

	return dc.ci.PingContext(ctx)
}

// Raw executes f exposing the underlying driver connection for the
// duration of f. The driverConn must not be used outside of f.
func (c *Conn) Raw(f func(driverConn any) error) error {
	dc, release, err := c.grabConn()
	if err != nil {
		return err
	}
	defer release()

	return dc.ci.Raw(f)
}

// Use executes f with the *sql.Conn behind c, for the parts of the
// database/sql API Conn does not wrap. The *sql.Conn must not be used
// outside of f, must not be closed, and f must not call methods of c.
func (c *Conn) Use(f func(*sql.Conn) error) error {
	dc, release, err := c.grabConn()
	if err != nil {
		return err
	}
	defer release()

	return f(dc.ci)
}

// Close probes the connection and returns it to the pool, which keeps
// it for re-use if the probe succeeded and replaces it otherwise.
// A failed probe is not an error; a failure to open the replacement is.
//
// Close waits for operations in progress to finish. Calling Close again
// returns ErrConnDone.
func (c *Conn) Close() error {
	if !c.done.CompareAndSwap(false, true) {
		return ErrConnDone
	}

	// Lock around releasing the pool connection
	// to ensure all operations have stopped before doing so.
	c.closemu.Lock()
	defer c.closemu.Unlock()

	p, dc := c.p, c.dc
	c.p, c.dc = nil, nil

	ctx := context.Background()
	valid, err := p.validator.IsValid(ctx, dc.ci)
	if err != nil {
		p.logger.Warn("connection probe failed", zap.String("conn_id", dc.id), zap.Error(err))
	}

	return p.putConn(ctx, dc, valid)
}
