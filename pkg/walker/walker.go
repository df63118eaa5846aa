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

// Package walker recursively mirrors a source tree onto a destination,
// dispatching each entry to the file copier or symlink replicator.
// Destination directories are created before their children are visited,
// so every child copy sees an existing parent.
package walker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/lazycp/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🎯 FileHandler performs the per-entry copy and link operations. It is an
// interface so tests can record the dispatch instead of touching disk.
type FileHandler interface {
	Copy(ctx context.Context, src, dest string) error
	Link(ctx context.Context, src, dest string) error
}

// 🚶 Walker traverses one tree at a time, strictly sequentially: one file,
// one progress state, one prompt.
type Walker struct {
	handler FileHandler
	logger  log.Logger
	exclude []string
}

// 🏭 New creates a Walker. exclude holds doublestar globs matched against
// slash-separated paths relative to the walk root.
func New(handler FileHandler, logger log.Logger, exclude []string) *Walker {
	return &Walker{
		handler: handler,
		logger:  logger,
		exclude: exclude,
	}
}

// 🏃 Run copies src to dest. A symlink or regular file source is handed
// straight to the handler, landing inside dest when dest is an existing
// directory. A directory source is mirrored recursively. Per-entry
// failures are contained by the handler; Run only returns ErrAborted or
// a context cancellation.
func (w *Walker) Run(ctx context.Context, src, dest string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Errorf("inspecting source: %w", err)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return w.handler.Link(ctx, src, resolveInto(src, dest))
	case info.Mode().IsRegular():
		return w.handler.Copy(ctx, src, resolveInto(src, dest))
	case info.IsDir():
		return w.walkDir(ctx, src, dest, src)
	default:
		// Sockets, devices and the like are outside the contract.
		w.logger.Debugf("ignoring unsupported file type at %s", src)
		return nil
	}
}

// resolveInto places src inside dest when dest is an existing directory.
func resolveInto(src, dest string) string {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, filepath.Base(src))
	}
	return dest
}

// walkDir mirrors the children of src under dest. Enumeration order comes
// from the directory listing and is not part of the contract. Recursion
// depth equals source tree depth.
func (w *Walker) walkDir(ctx context.Context, src, dest, root string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		// A subtree we cannot enumerate is a contained per-entry failure,
		// same as an unreadable file.
		w.logger.Errorf("Error reading directory %s: %v", src, err)
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		childSrc := filepath.Join(src, entry.Name())
		childDest := filepath.Join(dest, entry.Name())

		if w.excluded(childSrc, root) {
			w.logger.Debugf("excluded %s", childSrc)
			continue
		}

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if err := w.handler.Link(ctx, childSrc, childDest); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := w.handler.Copy(ctx, childSrc, childDest); err != nil {
				return err
			}
		case entry.IsDir():
			if err := os.MkdirAll(childDest, 0755); err != nil {
				w.logger.Errorf("Error creating directory %s: %v", childDest, err)
				continue
			}
			if err := w.walkDir(ctx, childSrc, childDest, root); err != nil {
				return err
			}
		default:
			w.logger.Debugf("ignoring unsupported file type at %s", childSrc)
		}
	}
	return nil
}

// excluded reports whether path matches an exclude glob, relative to root.
func (w *Walker) excluded(path, root string) bool {
	if len(w.exclude) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			w.logger.Debugf("error matching pattern %q against %s: %v", pattern, rel, err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
