// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"context"

	"go.uber.org/zap"
)

// Builder assembles a Pool from a Config and optional collaborators.
// The zero Builder is ready to use once a configuration is set.
type Builder struct {
	cfg       *Config
	logger    *zap.Logger
	validator *Validator
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetConfiguration sets the configuration to build from. A nil cfg is
// ignored and leaves any previous configuration in place.
func (b *Builder) SetConfiguration(cfg *Config) *Builder {
	if cfg != nil {
		b.cfg = cfg
	}
	return b
}

// WithLogger sets the logger the pool writes to. The default discards
// everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator sets the validator that probes released connections.
// It takes precedence over Config.ProbeQuery.
func (b *Builder) WithValidator(v *Validator) *Builder {
	b.validator = v
	return b
}

// Build validates the configuration, then builds the pool and opens
// its first MinPoolCache connections using ctx. If any of those fails,
// the ones already opened are closed and the error is returned.
//
// Nothing is dialed when the configuration is invalid.
func (b *Builder) Build(ctx context.Context) (*Pool, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg := *b.cfg

	v := b.validator
	switch {
	case v != nil:
		if v.query == "" {
			return nil, ErrEmptyQuery
		}
	case cfg.ProbeQuery != "":
		var err error
		if v, err = NewValidator(cfg.ProbeQuery); err != nil {
			return nil, err
		}
	default:
		v = DefaultValidator()
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := newPool(cfg, v, logger)

	p.mu.Lock()
	err := p.fillLocked(ctx, cfg.MinPoolCache)
	p.mu.Unlock()
	if err != nil {
		p.Close()
		return nil, err
	}

	p.logger.Info("pool built",
		zap.String("user", cfg.Username),
		zap.Int("min_pool_cache", cfg.MinPoolCache),
		zap.Int("max_pool_size", cfg.MaxPoolSize),
	)
	return p, nil
}

// New builds a pool from cfg. It is shorthand for
//
//	NewBuilder().SetConfiguration(cfg).WithLogger(logger).Build(ctx)
//
// logger may be nil.
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*Pool, error) {
	return NewBuilder().SetConfiguration(cfg).WithLogger(logger).Build(ctx)
}
