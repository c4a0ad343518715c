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

// Package entry wraps the entry point of a linked program into a Go function.
package entry

import (
	"sync"
	"time"

	"github.com/gx-org/aot/api/trace"
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/gx-org/aot/golang/emitter"
	"github.com/pkg/errors"
)

// Func is the entry point of a linked program.
// Captured parameters are sent to the device once when the function is created.
type Func struct {
	name      string
	sym       emitter.Symbol
	dev       *platform.Device
	numParams int
	numInputs int
	tracer    trace.Callback

	mut sync.Mutex
	buf []values.Value
}

// Option configures an entry point.
type Option func(*Func)

// WithTrace sets a callback called after each call.
func WithTrace(tr trace.Callback) Option {
	return func(f *Func) {
		f.tracer = tr
	}
}

// New returns the entry point of a library.
func New(lib *emitter.Library, name string, opts ...Option) (*Func, error) {
	sym, err := lib.Symbol(name)
	if err != nil {
		return nil, err
	}
	src := lib.Source()
	f := &Func{
		name:      name,
		sym:       sym,
		dev:       lib.Runtime().Device(),
		numParams: len(src.Params),
		numInputs: src.NumInputs,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.buf = make([]values.Value, f.numParams+f.numInputs)
	for i, param := range src.Params {
		if f.buf[i], err = values.FromConstant(f.dev, param); err != nil {
			return nil, errors.Wrapf(err, "cannot send parameter %d of %s", i, name)
		}
	}
	return f, nil
}

// Name of the entry point.
func (f *Func) Name() string {
	return f.name
}

// NumInputs returns the number of inputs the entry point expects.
func (f *Func) NumInputs() int {
	return f.numInputs
}

// Device on which the entry point runs.
func (f *Func) Device() *platform.Device {
	return f.dev
}

// Call the entry point.
// Arguments are converted with ToValue.
func (f *Func) Call(args ...any) (values.Value, error) {
	if len(args) != f.numInputs {
		return nil, errors.Errorf("%s: got %d argument(s) but want %d", f.name, len(args), f.numInputs)
	}
	f.mut.Lock()
	defer f.mut.Unlock()
	inputs := f.buf[f.numParams:]
	for i, arg := range args {
		var err error
		if inputs[i], err = ToValue(f.dev, i, arg); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	out, err := f.sym(f.buf)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.name)
	}
	if f.tracer != nil {
		if err := f.tracer.Trace(f.name, inputs, out, time.Since(start)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CallGo calls the entry point and converts the result to Go values.
func (f *Func) CallGo(args ...any) (any, error) {
	out, err := f.Call(args...)
	if err != nil {
		return nil, err
	}
	return values.ToGo(out)
}
