// Copyright 2024 The ObjectDict Authors
// This file is part of ObjectDict.
//
// ObjectDict is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ObjectDict is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ObjectDict. If not, see <http://www.gnu.org/licenses/>.

// Package config holds the tuning knobs shared across the arena, cluster
// and slot packages, loadable from YAML for deployments that want to tune
// them without a rebuild.
package config

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"
)

// Config collects every tunable used outside its own package's defaults.
type Config struct {
	// MaxLeafSize is the entry count above which a cluster leaf splits.
	MaxLeafSize int `yaml:"max_leaf_size"`
	// MinLeafSize is the entry count below which two sibling leaves merge.
	MinLeafSize int `yaml:"min_leaf_size"`
	// SlotCacheSize bounds the LRU cache of key-to-slot derivations.
	SlotCacheSize int `yaml:"slot_cache_size"`
	// CompressThreshold is the payload size above which a MixedArray string
	// or binary entry is transparently zstd-compressed before it is written
	// into the arena.
	CompressThreshold datasize.ByteSize `yaml:"compress_threshold"`
	// Development switches xlog to console encoding instead of JSON.
	Development bool `yaml:"development"`
}

// Default returns the tuning used when no YAML file is supplied.
func Default() Config {
	return Config{
		MaxLeafSize:       256,
		MinLeafSize:       64,
		SlotCacheSize:     4096,
		CompressThreshold: 256 * datasize.B,
		Development:       false,
	}
}

// Load reads a Config from a YAML file at path, filling any field the file
// omits with Default's value.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects tunings that would make the cluster tree's split/merge
// arithmetic degenerate.
func (c Config) Validate() error {
	if c.MaxLeafSize <= 0 {
		return fmt.Errorf("config: max_leaf_size must be positive, got %d", c.MaxLeafSize)
	}
	if c.MinLeafSize < 0 || c.MinLeafSize >= c.MaxLeafSize {
		return fmt.Errorf("config: min_leaf_size (%d) must be in [0, max_leaf_size) (%d)", c.MinLeafSize, c.MaxLeafSize)
	}
	if c.SlotCacheSize < 0 {
		return fmt.Errorf("config: slot_cache_size must be non-negative, got %d", c.SlotCacheSize)
	}
	return nil
}
