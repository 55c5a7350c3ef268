// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

const (
	defaultMinPoolCache = 10
	defaultMaxPoolSize  = 50
)

// Config holds the parameters and credentials a Pool is built from.
//
// A Config is validated once, when the pool is built. The pool keeps its
// own copy, so changing a Config afterwards has no effect on pools
// already built from it.
type Config struct {
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`

	// Target is the address of the database in the format of the
	// chosen dialer, usually a URL or DSN without credentials.
	Target string `yaml:"target" toml:"target"`

	// Driver names the registered dialer that opens connections.
	Driver string `yaml:"driver" toml:"driver"`

	// MinPoolCache is the number of idle connections opened when the
	// pool is built, and the batch size of each refill.
	MinPoolCache int `yaml:"min_pool_cache" toml:"min_pool_cache"`

	// MaxPoolSize is the ceiling on idle plus borrowed connections.
	MaxPoolSize int `yaml:"max_pool_size" toml:"max_pool_size"`

	// ProbeQuery checks a connection's liveness when it is released.
	// Empty means DefaultProbeQuery.
	ProbeQuery string `yaml:"probe_query,omitempty" toml:"probe_query,omitempty"`
}

// DefaultConfig returns a Config with the default pool sizes and no
// credentials.
func DefaultConfig() *Config {
	return &Config{
		MinPoolCache: defaultMinPoolCache,
		MaxPoolSize:  defaultMaxPoolSize,
	}
}

// Validate reports the first problem found with c, or nil.
// All returned errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c == nil:
		return ErrNilConfig
	case c.Username == "":
		return ErrEmptyUsername
	case c.Password == "":
		return ErrEmptyPassword
	case c.Target == "":
		return ErrEmptyTarget
	case c.Driver == "":
		return ErrEmptyDriver
	case c.MaxPoolSize < 0:
		return ErrMaxPoolSize
	case c.MinPoolCache < 0 || c.MinPoolCache > c.MaxPoolSize:
		return ErrMinPoolCache
	}
	return nil
}
