// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the copy options and the optional config file
// loader. CLI flags always win over file values.
package config

import (
	"context"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Priority is the operator's tuning hint for the copy loop.
type Priority string

const (
	PriorityLatency   Priority = "latency"
	PriorityChunkSize Priority = "chunksize"
)

// DefaultChunkSize is the read/write buffer size in bytes.
const DefaultChunkSize = 4096

// DefaultMaxLatency is the advisory per-chunk write latency ceiling in ms.
const DefaultMaxLatency = 100

// 📦 Config are the validated options handed to the copy engine.
type Config struct {
	// ChunkSize is the number of bytes read and written per streaming
	// iteration.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// MaxLatency is an advisory write-latency ceiling in milliseconds.
	// Accepted and surfaced, but not enforced by any copy-loop decision.
	MaxLatency int `json:"max_latency" yaml:"max_latency"`

	// Priority hints whether the operator tunes for latency or chunk
	// size. Advisory only, same status as MaxLatency.
	Priority Priority `json:"priority" yaml:"priority"`

	// Exclude are doublestar globs matched against paths relative to the
	// walk root; matching entries are skipped.
	Exclude []string `json:"exclude" yaml:"exclude"`

	// Force answers every destination collision with overwrite instead of
	// prompting.
	Force bool `json:"force" yaml:"force"`
}

// 🏭 Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		ChunkSize:  DefaultChunkSize,
		MaxLatency: DefaultMaxLatency,
		Priority:   PriorityLatency,
	}
}

// ✅ Validate checks the config for usable values.
func Validate(ctx context.Context, cfg *Config) error {
	if cfg.ChunkSize <= 0 {
		return errors.Errorf("chunk_size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.MaxLatency <= 0 {
		return errors.Errorf("max_latency must be positive, got %d", cfg.MaxLatency)
	}
	switch cfg.Priority {
	case PriorityLatency, PriorityChunkSize:
	default:
		return errors.Errorf("priority must be %q or %q, got %q", PriorityLatency, PriorityChunkSize, cfg.Priority)
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// defaultFiles are the config file names probed when --config is not given.
var defaultFiles = []string{".lazycp.yaml", ".lazycp.yml", ".lazycp.json", ".lazycp.hcl"}

// 🔍 Discover returns the first default config file present in the working
// directory, or "" when none exists.
func Discover() string {
	for _, name := range defaultFiles {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}
