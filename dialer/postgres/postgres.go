// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package postgres registers a dialer for PostgreSQL servers under the
// names "postgres" and "pgx", backed by pgx's database/sql adapter.
//
// The target is any connection string pgx accepts, either a URL
// (postgres://db.example.com:5432/app?sslmode=disable) or keyword/value
// pairs (host=db.example.com dbname=app). The pool's username and
// password replace any found in the target.
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/weiwenchen2022/dbcp/dialer"
)

func init() {
	dialer.Register("postgres", Dialer{})
	dialer.Register("pgx", Dialer{})
}

// Dialer opens PostgreSQL handles with stdlib.OpenDB.
type Dialer struct{}

var _ dialer.Dialer = Dialer{}

// Open implements dialer.Dialer.
func (Dialer) Open(target, username, password string) (*sql.DB, error) {
	cfg, err := connConfig(target, username, password)
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*cfg), nil
}

func connConfig(target, username, password string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(target)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse target: %w", err)
	}

	cfg.User = username
	cfg.Password = password
	return cfg, nil
}
