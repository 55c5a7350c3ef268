// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dialer defines the interface implemented by database
// dialers as used by package dbcp, and the registry dbcp resolves
// driver identifiers against.
//
// Most code should use package dbcp.
//
// A Dialer adapts one database/sql driver: it merges the pool's
// target and credentials into whatever the driver expects and returns
// a *sql.DB that has not necessarily connected yet. The pool pins each
// returned *sql.DB to a single physical connection, so dialers must not
// share a *sql.DB between calls.
//
// Dialers for common drivers live in subpackages and register
// themselves when imported for side effects:
//
//	import _ "github.com/weiwenchen2022/dbcp/dialer/postgres"
package dialer

import (
	"database/sql"
	"sort"
	"sync"
)

// Dialer is the interface that must be implemented by a database
// dialer.
type Dialer interface {
	// Open returns a database handle for target authenticated as
	// username. The target is a string in a dialer-specific format.
	//
	// Open should not connect; the pool connects through the handle
	// and reports connect failures itself.
	Open(target, username, password string) (*sql.DB, error)
}

// The DialerFunc type is an adapter to allow the use of
// ordinary functions as Dialer. If f is a function
// with the appropriate signature, DialerFunc(f) is a
// Dialer that calls f.
type DialerFunc func(target, username, password string) (*sql.DB, error)

// Open returns f(target, username, password).
func (f DialerFunc) Open(target, username, password string) (*sql.DB, error) {
	return f(target, username, password)
}

var dialers = struct {
	sync.RWMutex
	m map[string]Dialer
}{m: make(map[string]Dialer)}

// Register makes a dialer available by the provided name.
// If Register is called twice with the same name or if d is nil,
// it panics.
func Register(name string, d Dialer) {
	if d == nil {
		panic("dialer: Register dialer is nil")
	}

	dialers.Lock()
	defer dialers.Unlock()
	if _, dup := dialers.m[name]; dup {
		panic("dialer: Register called twice for dialer " + name)
	}
	dialers.m[name] = d
}

// Lookup returns the dialer registered under name.
func Lookup(name string) (Dialer, bool) {
	dialers.RLock()
	defer dialers.RUnlock()
	d, ok := dialers.m[name]
	return d, ok
}

// Dialers returns a sorted list of the names of the registered dialers.
func Dialers() []string {
	dialers.RLock()
	defer dialers.RUnlock()
	list := make([]string, 0, len(dialers.m))
	for name := range dialers.m {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// For tests.
func unregisterAllDialers() {
	dialers.Lock()
	defer dialers.Unlock()
	dialers.m = make(map[string]Dialer)
}
