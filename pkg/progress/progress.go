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

// Package progress tracks bytes transferred for the file currently being
// copied. Reporters are purely observational: they never influence copy
// correctness and may be fully stubbed in non-interactive contexts.
package progress

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// 📈 Reporter receives per-file transfer progress. One file is live at a
// time; Begin discards any previous state.
type Reporter interface {
	// Begin allocates a new progress state and shows the initial display.
	Begin(total int64, label string)
	// Advance adds n transferred bytes and updates the display with the
	// latest chunk write latency.
	Advance(n int64, latencyMs float64)
	// End releases display resources. Calling End with no active state is
	// a no-op.
	End()
}

// 📊 Bar renders a pterm progress bar per file, retitling it with the last
// chunk's write latency.
type Bar struct {
	writer io.Writer
	label  string
	bar    *pterm.ProgressbarPrinter
}

// 🏭 NewBar creates a progress bar reporter writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{writer: w}
}

func (b *Bar) Begin(total int64, label string) {
	b.End()
	b.label = label

	bar, err := pterm.DefaultProgressbar.
		WithTotal(int(total)).
		WithTitle(label).
		WithRemoveWhenDone(true).
		WithWriter(b.writer).
		Start()
	if err != nil {
		// Display failure never fails a copy.
		b.bar = nil
		return
	}
	b.bar = bar
}

func (b *Bar) Advance(n int64, latencyMs float64) {
	if b.bar == nil {
		return
	}
	b.bar.Add(int(n))
	b.bar.UpdateTitle(fmt.Sprintf("%s - %.2f ms", b.label, latencyMs))
}

func (b *Bar) End() {
	if b.bar == nil {
		return
	}
	b.bar.Stop()
	b.bar = nil
}

// 🔇 Nop discards all progress. Used with --quiet and in tests.
type Nop struct{}

func (Nop) Begin(total int64, label string)    {}
func (Nop) Advance(n int64, latencyMs float64) {}
func (Nop) End()                               {}
