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

package copier

import (
	"context"
	"os"

	"gitlab.com/tozd/go/errors"
)

// 🔗 Link recreates the symlink at src as a new symlink at dest with the
// identical target string. A relative target is copied verbatim, not
// resolved. Failures are logged and contained like file copies; only
// ErrAborted propagates.
func (c *Copier) Link(ctx context.Context, src, dest string) error {
	proceed, err := c.resolveExisting(dest)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	if err := c.linkFile(src, dest); err != nil {
		c.logger.Errorf("Failed to link %s to %s: %v", src, dest, err)
		return nil
	}

	c.logger.Infof("Success linking %s to %s", src, dest)
	return nil
}

func (c *Copier) linkFile(src, dest string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return errors.Errorf("reading link target: %w", err)
	}

	// Symlinks cannot be truncated in place; an overwrite decision means
	// replacing whatever sits at dest.
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return errors.Errorf("removing existing destination: %w", err)
		}
	}

	if err := os.Symlink(target, dest); err != nil {
		return errors.Errorf("creating symlink: %w", err)
	}
	return nil
}
