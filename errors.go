// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error; a pool is
// never built, and nothing is dialed, from a configuration that fails
// validation.
var ErrInvalidConfig = errors.New("dbcp: invalid configuration")

// Configuration errors, in the order Config.Validate checks them.
var (
	ErrNilConfig     = fmt.Errorf("%w: configuration cannot be nil", ErrInvalidConfig)
	ErrEmptyUsername = fmt.Errorf("%w: no database user defined", ErrInvalidConfig)
	ErrEmptyPassword = fmt.Errorf("%w: no database password defined", ErrInvalidConfig)
	ErrEmptyTarget   = fmt.Errorf("%w: no database target defined", ErrInvalidConfig)
	ErrEmptyDriver   = fmt.Errorf("%w: no database driver defined", ErrInvalidConfig)
	ErrMaxPoolSize   = fmt.Errorf("%w: maximum pool size must not be negative", ErrInvalidConfig)
	ErrMinPoolCache  = fmt.Errorf("%w: minimum pool cache must be between 0 and the maximum pool size", ErrInvalidConfig)
)

// ErrUnknownDriver is wrapped by the error returned when the configured
// driver identifier has no registered dialer.
var ErrUnknownDriver = errors.New("dbcp: unknown driver")

// ErrValidation is wrapped by errors from probing a connection.
var ErrValidation = errors.New("dbcp: connection validation failed")

// ErrEmptyQuery is returned when a Validator has no probe query.
var ErrEmptyQuery = fmt.Errorf("%w: probe query must not be empty", ErrValidation)

// ErrConnDone is returned by any operation that is performed on a connection
// that has already been returned to the connection pool.
var ErrConnDone = errors.New("dbcp: connection is already released")

// ErrNoConnAvailable is returned by Pool.Conn when the pool cannot hand
// out a connection right now. It never blocks; callers that want to wait
// retry on their own schedule.
var ErrNoConnAvailable = errors.New("dbcp: no connection available")

// ErrPoolClosed is returned by Pool.Conn after Pool.Close.
var ErrPoolClosed = errors.New("dbcp: pool is closed")

// ConnectError reports a failure to open a physical connection.
type ConnectError struct {
	Driver string // dialer name from the configuration
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("dbcp: connect via %q: %v", e.Driver, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
