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

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/lazycp/pkg/config"
	"github.com/walteh/lazycp/pkg/conflict"
	"github.com/walteh/lazycp/pkg/copier"
	"github.com/walteh/lazycp/pkg/log"
	"github.com/walteh/lazycp/pkg/progress"
	"github.com/walteh/lazycp/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// 🏭 newRootCmd builds the lazycp command.
func newRootCmd() *cobra.Command {
	var (
		cfgFile    string
		chunkSize  int
		maxLatency int
		priority   string
		exclude    []string
		force      bool
		debug      bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:           "lazycp [flags] <source> <destination>",
		Short:         "Lazily copy a file or directory tree with per-file progress",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Set up logger
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			zlog := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
			ctx := zlog.WithContext(cmd.Context())

			// Config file first, flags on top
			cfg, err := loadConfig(ctx, cfgFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}
			if flags.Changed("max-latency") {
				cfg.MaxLatency = maxLatency
			}
			if flags.Changed("priority") {
				cfg.Priority = config.Priority(priority)
			}
			if flags.Changed("force") {
				cfg.Force = force
			}
			cfg.Exclude = append(cfg.Exclude, exclude...)

			if err := config.Validate(ctx, cfg); err != nil {
				return err
			}

			return runCopy(ctx, cfg, args[0], args[1], zlog, quiet)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: discovered .lazycp.{yaml,yml,json,hcl})")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "read/write buffer size in bytes")
	cmd.Flags().IntVar(&maxLatency, "max-latency", config.DefaultMaxLatency, "advisory max write latency per chunk in ms")
	cmd.Flags().StringVar(&priority, "priority", string(config.PriorityLatency), "tuning hint, one of: latency, chunksize")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob of entries to skip, relative to the source root (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing destinations without prompting")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress bars")

	return cmd
}

// loadConfig loads the given config file, or a discovered default, or just
// the built-in defaults when no file exists.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		path = config.Discover()
	}
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// 🏃 runCopy wires the copy engine together and runs the walk.
func runCopy(ctx context.Context, cfg *config.Config, src, dest string, zlog zerolog.Logger, quiet bool) error {
	ulog := log.New(os.Stdout, zlog)

	// An extensionless destination that is not already a directory is
	// created as one, so "lazycp tree new-place" mirrors into new-place/.
	if filepath.Ext(filepath.Base(dest)) == "" {
		if info, err := os.Stat(dest); err != nil || !info.IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return errors.Errorf("creating destination directory: %w", err)
			}
		}
	}

	var reporter progress.Reporter = progress.NewBar(os.Stdout)
	if quiet {
		reporter = progress.Nop{}
	}

	var resolver conflict.Resolver = conflict.NewPrompt(os.Stdin, os.Stdout)
	if cfg.Force {
		resolver = conflict.Fixed(conflict.DecisionOverwrite)
	}

	c := copier.New(copier.Options{
		ChunkSize:  cfg.ChunkSize,
		MaxLatency: cfg.MaxLatency,
		Priority:   cfg.Priority,
	}, ulog, reporter, resolver)
	w := walker.New(c, ulog, cfg.Exclude)

	ulog.Infof("Starting file copy from %s to %s", src, dest)
	ulog.Debugf("chunk_size=%d max_latency=%d priority=%s exclude=%v", cfg.ChunkSize, cfg.MaxLatency, cfg.Priority, cfg.Exclude)

	err := w.Run(ctx, src, dest)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		// Interrupted runs exit cleanly; what was copied stays copied.
		ulog.Info("Interrupt received")
	default:
		return err
	}

	ulog.Info("File copy operation finished")
	return nil
}
