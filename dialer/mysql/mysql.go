// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mysql registers a dialer for MySQL and MariaDB servers
// under the names "mysql" and "mariadb".
//
// The target is either a go-sql-driver DSN without credentials,
//
//	tcp(db.example.com:3306)/app?parseTime=true
//
// or a URL,
//
//	mysql://db.example.com:3306/app?parseTime=true
//
// The pool's username and password always replace any found in the
// target.
package mysql

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/weiwenchen2022/dbcp/dialer"
)

func init() {
	dialer.Register("mysql", Dialer{})
	dialer.Register("mariadb", Dialer{})
}

// Dialer opens MySQL handles through a go-sql-driver connector.
type Dialer struct{}

var _ dialer.Dialer = Dialer{}

// Open implements dialer.Dialer.
func (Dialer) Open(target, username, password string) (*sql.DB, error) {
	cfg, err := config(target, username, password)
	if err != nil {
		return nil, err
	}

	connector, err := mysqldriver.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func config(target, username, password string) (*mysqldriver.Config, error) {
	dsn := target
	if strings.HasPrefix(target, "mysql://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("mysql: parse target: %w", err)
		}

		dsn = fmt.Sprintf("tcp(%s)/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
		if u.RawQuery != "" {
			dsn += "?" + u.RawQuery
		}
	}

	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse target: %w", err)
	}

	cfg.User = username
	cfg.Passwd = password
	return cfg, nil
}
