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

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 Logger is the logging collaborator injected into the copy engine.
// Copy and link outcomes are announced through it; it never influences
// copy correctness.
type Logger interface {
	Info(msg string)
	Error(msg string)
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// 🎯 Console writes user-facing lines to a console writer and mirrors
// everything to zerolog for structured/debug output.
type Console struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a console logger at the given level.
func New(console io.Writer, zlog zerolog.Logger) *Console {
	return &Console{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 📝 Info logs an info message
func (l *Console) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.FgGreen).Sprint("✔"), msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Error logs an error message
func (l *Console) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.FgRed).Sprint("✗"), color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Console) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Console) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Debugf logs only to zerolog, not to the console.
func (l *Console) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Debug().Msgf(format, args...)
}

// 🔇 Nop is a Logger that discards everything. Useful in tests and
// non-interactive contexts.
type Nop struct{}

func (Nop) Info(msg string)                           {}
func (Nop) Error(msg string)                          {}
func (Nop) Infof(format string, args ...interface{})  {}
func (Nop) Errorf(format string, args ...interface{}) {}
func (Nop) Debugf(format string, args ...interface{}) {}
