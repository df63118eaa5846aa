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

// Package copier streams single files (and replicates symlinks) from a
// source path to a destination path. Failures on individual files are
// contained: they are reported through the injected logger and the copy
// returns nil so a surrounding tree walk can continue. The only error a
// copy ever returns is ErrAborted, raised when the conflict resolver
// answers abort.
package copier

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/walteh/lazycp/pkg/config"
	"github.com/walteh/lazycp/pkg/conflict"
	"github.com/walteh/lazycp/pkg/detect"
	"github.com/walteh/lazycp/pkg/log"
	"github.com/walteh/lazycp/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

// 🛑 ErrAborted is returned when the user chose to abort at a conflict
// prompt. It propagates untouched to the entry point, which turns it into
// a non-zero exit.
var ErrAborted = errors.New("aborted at conflict prompt")

// ⚙️ Options tune the streaming copy loop.
type Options struct {
	// ChunkSize is the read/write buffer size in bytes.
	ChunkSize int

	// MaxLatency and Priority are accepted for operator tuning but are not
	// consumed by any copy-loop decision. Advance still reports per-chunk
	// write latency so a future policy has something to act on.
	MaxLatency int
	Priority   config.Priority
}

// 📦 Copier copies one file at a time. It owns the progress reporter for
// the duration of each copy; exactly one progress state is live at a time.
type Copier struct {
	opts     Options
	logger   log.Logger
	reporter progress.Reporter
	resolver conflict.Resolver
}

// 🏭 New creates a Copier with the given collaborators.
func New(opts Options, logger log.Logger, reporter progress.Reporter, resolver conflict.Resolver) *Copier {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.DefaultChunkSize
	}
	return &Copier{
		opts:     opts,
		logger:   logger,
		reporter: reporter,
		resolver: resolver,
	}
}

// 🏃 Copy streams src to dest in ChunkSize chunks, consulting the conflict
// resolver when dest exists. IO failures are logged and contained (nil is
// returned); only ErrAborted propagates.
func (c *Copier) Copy(ctx context.Context, src, dest string) error {
	proceed, err := c.resolveExisting(dest)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	if err := c.copyFile(src, dest); err != nil {
		c.logger.Errorf("Error copying %s to %s: %v", src, dest, err)
		return nil
	}

	c.logger.Infof("Success copying %s to %s", src, dest)
	return nil
}

// resolveExisting consults the resolver when dest exists. It reports
// whether the copy should proceed; ErrAborted is the only possible error.
func (c *Copier) resolveExisting(dest string) (bool, error) {
	if _, err := os.Lstat(dest); err != nil {
		// Nothing there yet, no conflict.
		return true, nil
	}

	decision, err := c.resolver.Resolve(dest)
	if err != nil {
		c.logger.Errorf("Error resolving conflict at %s: %v", dest, err)
		return false, nil
	}

	switch decision {
	case conflict.DecisionSkip:
		c.logger.Infof("Skipping existing %s", dest)
		return false, nil
	case conflict.DecisionAbort:
		return false, ErrAborted
	case conflict.DecisionOverwrite:
		return true, nil
	default:
		c.logger.Errorf("Unknown conflict decision %q for %s", decision, dest)
		return false, nil
	}
}

// copyFile performs the actual chunked stream. The progress state opened
// here is closed on every exit path.
func (c *Copier) copyFile(src, dest string) (err error) {
	binary, err := detect.IsBinary(src)
	if err != nil {
		return errors.Errorf("probing source: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("inspecting source: %w", err)
	}

	c.reporter.Begin(info.Size(), filepath.Base(src))
	defer c.reporter.End()

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Errorf("closing destination: %w", cerr)
		}
	}()

	// carry holds the trailing bytes of a rune split across chunk
	// boundaries in text mode.
	var carry []byte
	buf := make([]byte, c.opts.ChunkSize)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !binary {
				carry, err = validateText(carry, chunk)
				if err != nil {
					return err
				}
			}

			start := time.Now()
			if _, werr := out.Write(chunk); werr != nil {
				return errors.Errorf("writing chunk: %w", werr)
			}
			latency := float64(time.Since(start)) / float64(time.Millisecond)

			c.reporter.Advance(int64(n), latency)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errors.Errorf("reading chunk: %w", rerr)
		}
	}

	if !binary && len(carry) > 0 {
		return errors.Errorf("decoding text stream: truncated UTF-8 sequence at end of file")
	}
	return nil
}

// validateText checks that carry+chunk continues a valid UTF-8 stream and
// returns the new incomplete tail to carry into the next chunk. A binary
// file misclassified as text by the probe fails here, mid-copy.
func validateText(carry, chunk []byte) ([]byte, error) {
	b := chunk
	if len(carry) > 0 {
		b = append(append([]byte{}, carry...), chunk...)
	}

	ok, tail := detect.ValidTextPrefix(b)
	if !ok {
		return nil, errors.Errorf("decoding text stream: invalid UTF-8 sequence")
	}
	if len(tail) == 0 {
		return nil, nil
	}
	// tail aliases the read buffer; the next iteration reuses it.
	return append([]byte(nil), tail...), nil
}
