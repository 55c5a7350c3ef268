// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix LoadConfig applies.
const EnvPrefix = "DBCP"

// LoadConfig reads a Config from a YAML (.yaml, .yml) or TOML (.toml)
// file, on top of DefaultConfig, then applies overrides from
// environment variables prefixed with EnvPrefix.
//
// LoadConfig does not validate the result; building a pool does.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbcp: read config: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("dbcp: parse config %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("dbcp: parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("dbcp: unsupported config format %q", ext)
	}

	if err := cfg.ApplyEnv(EnvPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields of c from the environment variables
// PREFIX_USERNAME, PREFIX_PASSWORD, PREFIX_TARGET, PREFIX_DRIVER,
// PREFIX_MIN_POOL_CACHE, PREFIX_MAX_POOL_SIZE and PREFIX_PROBE_QUERY.
// Unset variables leave the field alone.
func (c *Config) ApplyEnv(prefix string) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"USERNAME", &c.Username},
		{"PASSWORD", &c.Password},
		{"TARGET", &c.Target},
		{"DRIVER", &c.Driver},
		{"PROBE_QUERY", &c.ProbeQuery},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(prefix + "_" + s.name); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MIN_POOL_CACHE", &c.MinPoolCache},
		{"MAX_POOL_SIZE", &c.MaxPoolSize},
	}
	for _, i := range ints {
		key := prefix + "_" + i.name
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("dbcp: %s: %w", key, err)
		}
		*i.dst = n
	}
	return nil
}
