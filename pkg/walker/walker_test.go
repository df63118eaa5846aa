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

package walker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/lazycp/pkg/conflict"
	"github.com/walteh/lazycp/pkg/copier"
	"github.com/walteh/lazycp/pkg/log"
	"github.com/walteh/lazycp/pkg/progress"
	"github.com/walteh/lazycp/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// 🧪 newTestWalker builds a walker around a real copier with the given
// resolver and exclude globs
func newTestWalker(resolver conflict.Resolver, exclude []string) *walker.Walker {
	c := copier.New(copier.Options{}, log.Nop{}, progress.Nop{}, resolver)
	return walker.New(c, log.Nop{}, exclude)
}

// 🧪 dispatchRecorder records which entries were dispatched where
type dispatchRecorder struct {
	copies [][2]string
	links  [][2]string
}

func (d *dispatchRecorder) Copy(ctx context.Context, src, dest string) error {
	d.copies = append(d.copies, [2]string{src, dest})
	return nil
}

func (d *dispatchRecorder) Link(ctx context.Context, src, dest string) error {
	d.links = append(d.links, [2]string{src, dest})
	return nil
}

func TestRunMirrorsTree(t *testing.T) {
	tmp := t.TempDir()

	// A/ with a.txt ("hello"), empty B/, and symlink c -> /tmp/target.
	src := filepath.Join(tmp, "A")
	require.NoError(t, os.Mkdir(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(src, "B"), 0755))
	require.NoError(t, os.Symlink("/tmp/target", filepath.Join(src, "c")))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), nil)
	require.NoError(t, w.Run(context.Background(), src, dest))

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	info, err := os.Stat(filepath.Join(dest, "B"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	entries, err := os.ReadDir(filepath.Join(dest, "B"))
	require.NoError(t, err)
	assert.Empty(t, entries, "empty source dirs are mirrored empty")

	target, err := os.Readlink(filepath.Join(dest, "c"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/target", target)
}

func TestRunNestedDirectories(t *testing.T) {
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "x", "y", "z"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "x", "y", "deep.txt"), []byte("deep"), 0644))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), nil)
	require.NoError(t, w.Run(context.Background(), src, dest))

	got, err := os.ReadFile(filepath.Join(dest, "x", "y", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("deep"), got)

	info, err := os.Stat(filepath.Join(dest, "x", "y", "z"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunSingleFileIntoExistingDir(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))
	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	rec := &dispatchRecorder{}
	w := walker.New(rec, log.Nop{}, nil)
	require.NoError(t, w.Run(context.Background(), src, dest))

	// Lands inside the directory under the source basename.
	require.Len(t, rec.copies, 1)
	assert.Equal(t, filepath.Join(dest, "file.txt"), rec.copies[0][1])
}

func TestRunSingleFileToNewName(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))
	dest := filepath.Join(tmp, "renamed.txt")

	rec := &dispatchRecorder{}
	w := walker.New(rec, log.Nop{}, nil)
	require.NoError(t, w.Run(context.Background(), src, dest))

	require.Len(t, rec.copies, 1)
	assert.Equal(t, dest, rec.copies[0][1])
}

func TestRunSingleSymlink(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "link")
	require.NoError(t, os.Symlink("/tmp/somewhere", src))
	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	rec := &dispatchRecorder{}
	w := walker.New(rec, log.Nop{}, nil)
	require.NoError(t, w.Run(context.Background(), src, dest))

	require.Len(t, rec.links, 1)
	assert.Empty(t, rec.copies)
	assert.Equal(t, filepath.Join(dest, "link"), rec.links[0][1])
}

func TestRunExcludePatterns(t *testing.T) {
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "logs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.txt"), []byte("keep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "skip.log"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "logs", "inner.txt"), []byte("skip"), 0644))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), []string{"*.log", "logs"})
	require.NoError(t, w.Run(context.Background(), src, dest))

	_, err := os.Stat(filepath.Join(dest, "keep.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "skip.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunAbortStopsWalk(t *testing.T) {
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src")
	require.NoError(t, os.Mkdir(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.txt"), []byte("b"), 0644))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))
	// Pre-existing a.txt triggers the conflict for the first entry.
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old"), 0644))

	w := newTestWalker(conflict.Fixed(conflict.DecisionAbort), nil)
	err := w.Run(context.Background(), src, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, copier.ErrAborted))

	// Nothing after the abort is touched.
	got, rerr := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, rerr)
	assert.Equal(t, []byte("old"), got)
	_, serr := os.Stat(filepath.Join(dest, "b.txt"))
	assert.True(t, os.IsNotExist(serr))
}

func TestRunCancelledContext(t *testing.T) {
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src")
	require.NoError(t, os.Mkdir(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0644))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), nil)
	err := w.Run(ctx, src, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, serr := os.Stat(filepath.Join(dest, "a.txt"))
	assert.True(t, os.IsNotExist(serr))
}

func TestRunMissingSource(t *testing.T) {
	tmp := t.TempDir()
	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), nil)

	err := w.Run(context.Background(), filepath.Join(tmp, "nope"), tmp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspecting source")
}

func TestRunIdempotentWithOverwrite(t *testing.T) {
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("beta"), 0644))
	require.NoError(t, os.Symlink("relative/target", filepath.Join(src, "lnk")))

	dest := filepath.Join(tmp, "dest")
	require.NoError(t, os.Mkdir(dest, 0755))

	w := newTestWalker(conflict.Fixed(conflict.DecisionOverwrite), nil)
	require.NoError(t, w.Run(context.Background(), src, dest))
	require.NoError(t, w.Run(context.Background(), src, dest))

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)

	got, err = os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), got)

	target, err := os.Readlink(filepath.Join(dest, "lnk"))
	require.NoError(t, err)
	assert.Equal(t, "relative/target", target)
}
