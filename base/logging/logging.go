// Copyright 2024 Google LLC
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

// Package logging provides a leveled logger for the compiler and its tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// Level of a logger. A message is displayed if its level is lower or equal
// to the level of the logger.
type Level int

// Enumeration of the different log levels.
const (
	LevelSilent  Level = iota // no output at all
	LevelError                // only errors
	LevelWarning              // errors and warnings
	LevelInfo                 // errors, warnings, and progress
	LevelDebug                // everything, including compiler internals
)

var levelNames = map[string]Level{
	"silent":  LevelSilent,
	"error":   LevelError,
	"warning": LevelWarning,
	"info":    LevelInfo,
	"debug":   LevelDebug,
}

// ParseLevel returns a level given its name.
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LevelSilent, errors.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// String representation of the level.
func (lvl Level) String() string {
	for name, l := range levelNames {
		if l == lvl {
			return name
		}
	}
	return fmt.Sprintf("Level(%d)", int(lvl))
}

var debugPrinter = pterm.PrefixPrinter{
	MessageStyle: pterm.NewStyle(pterm.FgGray),
	Prefix: pterm.Prefix{
		Text:  " DEBUG ",
		Style: pterm.NewStyle(pterm.BgGray, pterm.FgBlack),
	},
}

// Logger writes leveled messages to a writer.
// A logger can be used concurrently.
type Logger struct {
	mut   sync.Mutex
	w     io.Writer
	level Level
	color bool
}

// New returns a logger writing to w with colors.
func New(w io.Writer, level Level) *Logger {
	return &Logger{w: w, level: level, color: true}
}

// NewPlain returns a logger writing to w without color escape sequences.
func NewPlain(w io.Writer, level Level) *Logger {
	return &Logger{w: w, level: level}
}

// Stderr returns a logger writing to the standard error.
func Stderr(level Level) *Logger {
	return New(os.Stderr, level)
}

// Discard returns a logger dropping all messages.
func Discard() *Logger {
	return &Logger{w: io.Discard, level: LevelSilent}
}

// Level returns the level of the logger.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelSilent
	}
	return l.level
}

// Enabled returns true if messages at a given level are displayed.
func (l *Logger) Enabled(level Level) bool {
	return level != LevelSilent && level <= l.Level()
}

func (l *Logger) print(level Level, p *pterm.PrefixPrinter, format string, a []any) {
	if !l.Enabled(level) {
		return
	}
	s := p.Sprintf(format, a...)
	if !l.color {
		s = pterm.RemoveColorFromString(s)
	}
	l.mut.Lock()
	defer l.mut.Unlock()
	fmt.Fprintln(l.w, strings.TrimRight(s, "\n"))
}

// Debugf logs a message describing the internals of the compiler.
func (l *Logger) Debugf(format string, a ...any) {
	l.print(LevelDebug, &debugPrinter, format, a)
}

// Infof logs a progress message.
func (l *Logger) Infof(format string, a ...any) {
	l.print(LevelInfo, &pterm.Info, format, a)
}

// Warnf logs a warning.
func (l *Logger) Warnf(format string, a ...any) {
	l.print(LevelWarning, &pterm.Warning, format, a)
}

// Errorf logs an error.
func (l *Logger) Errorf(format string, a ...any) {
	l.print(LevelError, &pterm.Error, format, a)
}
