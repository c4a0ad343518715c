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

package emitter

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DefaultTimeout is the build timeout when none is specified.
const DefaultTimeout = 2 * time.Minute

// Files written in the work directory.
const (
	GoFile  = "program.go"
	ABIFile = "program.ll"
	ModFile = "go.mod"
)

// NativeBuildError is returned when the external build command fails.
type NativeBuildError struct {
	Command []string
	Err     error
	Output  []byte
}

func (e *NativeBuildError) Error() string {
	var b strings.Builder
	b.WriteString(strings.Join(e.Command, " "))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if out := bytes.TrimSpace(e.Output); len(out) > 0 {
		b.WriteString("\n")
		b.Write(out)
	}
	return b.String()
}

func (e *NativeBuildError) Unwrap() error {
	return e.Err
}

// Toolchain writes the emitted source in a work directory and builds it
// with an external command before linking the program in the current process.
type Toolchain struct {
	// Command is the build command, run in the work directory.
	// Nothing is built if the command is empty.
	Command []string
	// Timeout of the build command.
	Timeout time.Duration
	// WorkDir is the directory in which the source is written.
	// A temporary directory is used if empty.
	WorkDir string
	// KeepSource keeps the temporary directory after the build.
	KeepSource bool
	// Device on which the program is executed.
	Device *platform.Device
	// Log receives build progress.
	Log *logging.Logger
}

var _ Linker = (*Toolchain)(nil)

func (tc *Toolchain) logger() *logging.Logger {
	if tc.Log == nil {
		return logging.Discard()
	}
	return tc.Log
}

func (tc *Toolchain) workDir() (dir string, cleanup func() error, err error) {
	noop := func() error { return nil }
	if tc.WorkDir != "" {
		if err := os.MkdirAll(tc.WorkDir, 0o755); err != nil {
			return "", nil, errors.WithStack(err)
		}
		return tc.WorkDir, noop, nil
	}
	dir, err = os.MkdirTemp("", "aotc-")
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	if tc.KeepSource {
		tc.logger().Infof("source kept in %s", dir)
		return dir, noop, nil
	}
	return dir, func() error { return errors.WithStack(os.RemoveAll(dir)) }, nil
}

// WriteSource writes the emitted files in a directory.
func WriteSource(dir string, src *Source) error {
	files := []struct {
		name string
		data []byte
	}{
		{GoFile, src.Go},
		{ABIFile, []byte(src.ABI)},
		{ModFile, src.GoMod},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (tc *Toolchain) build(ctx context.Context, dir string) error {
	if len(tc.Command) == 0 {
		return nil
	}
	timeout := tc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tc.logger().Debugf("running %s in %s", strings.Join(tc.Command, " "), dir)
	cmd := exec.CommandContext(ctx, tc.Command[0], tc.Command[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Wrapf(ctxErr, "build did not complete after %s", timeout)
	}
	if err != nil {
		return &NativeBuildError{Command: tc.Command, Err: err, Output: out}
	}
	return nil
}

// Link builds the emitted source and links the program.
func (tc *Toolchain) Link(ctx context.Context, prog *Program, src *Source) (lib *Library, err error) {
	dir, cleanup, err := tc.workDir()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, cleanup())
		if err != nil {
			lib = nil
		}
	}()
	if err := WriteSource(dir, src); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := tc.build(ctx, dir); err != nil {
		return nil, err
	}
	tc.logger().Debugf("%s built in %s", prog.Name, time.Since(start))
	inProc := &InProcess{Device: tc.Device}
	return inProc.Link(ctx, prog, src)
}
