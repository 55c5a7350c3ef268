// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultProbeQuery is the liveness query used when none is configured.
const DefaultProbeQuery = "SELECT 1"

// Querier is implemented by *sql.Conn, *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Validator probes connections for liveness with a lightweight query.
// The zero Validator has no query and reports ErrEmptyQuery.
type Validator struct {
	query string
}

// NewValidator returns a Validator that runs query.
func NewValidator(query string) (*Validator, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return &Validator{query: query}, nil
}

// DefaultValidator returns a Validator that runs DefaultProbeQuery.
func DefaultValidator() *Validator {
	return &Validator{query: DefaultProbeQuery}
}

// Query returns the probe query.
func (v *Validator) Query() string {
	return v.query
}

// IsValid runs the probe query on q and reports whether it produced at
// least one row. An empty result is not an error. Errors running the
// query wrap ErrValidation.
func (v *Validator) IsValid(ctx context.Context, q Querier) (bool, error) {
	if v == nil || v.query == "" {
		return false, ErrEmptyQuery
	}

	rows, err := q.QueryContext(ctx, v.query)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	defer rows.Close()

	ok := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return ok, nil
}
