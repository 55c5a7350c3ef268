// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite registers a dialer for SQLite databases under the name
// "sqlite", using the pure-Go modernc.org/sqlite driver.
//
// The target is a file path or URI as understood by the driver, for
// example "app.db" or "file:app.db?_pragma=busy_timeout(5000)".
// SQLite has no authentication, so the username and password are
// accepted and ignored.
package sqlite

import (
	"database/sql"

	"github.com/weiwenchen2022/dbcp/dialer"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the database/sql driver the dialer opens.
const DriverName = "sqlite"

func init() {
	dialer.Register("sqlite", Dialer{})
}

// Dialer opens SQLite handles.
type Dialer struct{}

var _ dialer.Dialer = Dialer{}

// Open implements dialer.Dialer.
func (Dialer) Open(target, _, _ string) (*sql.DB, error) {
	return sql.Open(DriverName, target)
}
