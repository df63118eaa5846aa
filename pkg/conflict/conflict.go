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

// Package conflict decides what happens when a destination path already
// exists. The decision provider is pluggable so that non-interactive
// callers and tests can substitute a scripted policy for the prompt.
package conflict

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
)

// ⚖️ Decision is the outcome of a destination collision.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionOverwrite
	DecisionSkip
	DecisionAbort // stop the whole run, not just this file
)

// String returns a string representation of Decision
func (d Decision) String() string {
	switch d {
	case DecisionOverwrite:
		return "overwrite"
	case DecisionSkip:
		return "skip"
	case DecisionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// 🎯 Resolver produces a Decision for an existing destination path. It is
// only consulted when the path exists.
type Resolver interface {
	Resolve(dest string) (Decision, error)
}

// 💬 Prompt is the interactive resolver. It presents the three choices and
// loops reading input until one of o/s/e (case-insensitive) is given; any
// other input re-prompts indefinitely.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

// 🏭 NewPrompt creates an interactive resolver reading answers from in.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (p *Prompt) Resolve(dest string) (Decision, error) {
	for {
		fmt.Fprintf(p.out, "%s Duplicate found at %s - Overwrite (O), Skip (S), Exit (E)?\n",
			color.New(color.FgYellow).Sprint("⚠"),
			color.New(color.FgCyan).Sprint(dest))
		fmt.Fprint(p.out, "> ")

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return DecisionUnknown, errors.Errorf("reading decision: %w", err)
			}
			// Closed input can never answer; aborting is the only safe
			// choice left.
			return DecisionAbort, nil
		}

		switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
		case "o":
			return DecisionOverwrite, nil
		case "s":
			return DecisionSkip, nil
		case "e":
			return DecisionAbort, nil
		}
	}
}

// 🤖 Fixed always answers with the same decision. Backs --force.
type Fixed Decision

func (f Fixed) Resolve(dest string) (Decision, error) {
	return Decision(f), nil
}
