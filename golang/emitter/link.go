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
	"context"

	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/build/lowered"
	"github.com/gx-org/aot/golang/aotrt"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
)

type (
	// Linker loads an emitted program.
	Linker interface {
		Link(ctx context.Context, prog *Program, src *Source) (*Library, error)
	}

	// Symbol is a function exported by a library.
	// It takes the captured parameters followed by the inputs.
	Symbol func(args []values.Value) (values.Value, error)

	// Library is a linked program.
	Library struct {
		rt  *aotrt.Runtime
		src *Source
		// arities of the symbols exported by the library.
		arities map[string]int
	}
)

// Source returns the source from which the library has been linked.
func (lib *Library) Source() *Source {
	return lib.src
}

// Runtime returns the runtime executing the program.
func (lib *Library) Runtime() *aotrt.Runtime {
	return lib.rt
}

// Symbol returns an exported function given its name.
func (lib *Library) Symbol(name string) (Symbol, error) {
	arity, ok := lib.arities[name]
	if !ok {
		return nil, errors.Errorf("symbol %s not found", name)
	}
	numParams := len(lib.src.Params)
	return func(args []values.Value) (values.Value, error) {
		if len(args) != numParams+arity {
			return nil, errors.Errorf("%s: got %d argument(s) but want %d parameter(s) and %d input(s)", name, len(args), numParams, arity)
		}
		r := lib.rt.Bind(args[:numParams])
		fn, err := r.Global(name)
		if err != nil {
			return nil, err
		}
		return r.Invoke(fn, args[numParams:]...)
	}, nil
}

// InProcess links programs in the current process.
// Lowered functions are compiled into Go closures calling kernels from the registry.
type InProcess struct {
	Device *platform.Device
}

var _ Linker = (*InProcess)(nil)

// Link the program.
func (l *InProcess) Link(ctx context.Context, prog *Program, src *Source) (*Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prog.Registry == nil {
		return nil, errors.Errorf("program %s has no kernel registry", prog.Name)
	}
	for _, kernel := range src.Kernels {
		if _, ok := prog.Registry.Lookup(kernel); !ok {
			return nil, errors.Errorf("kernel %s not found in registry", kernel)
		}
	}
	dev := l.Device
	if dev == nil {
		dev = platform.New().Device()
	}
	rt := aotrt.New(prog.Registry, dev)
	for _, dt := range src.DataTypes {
		if err := rt.RegisterData(dt); err != nil {
			return nil, err
		}
	}
	c := newClosureCompiler(src)
	lib := &Library{rt: rt, src: src, arities: make(map[string]int)}
	define := func(name string, fn *lowered.Function) error {
		f, err := c.function(fn)
		if err != nil {
			return errors.Wrapf(err, "cannot link %s", name)
		}
		lib.arities[name] = len(fn.Params)
		return rt.Define(name, len(fn.Params), f)
	}
	for _, g := range prog.Globals {
		if err := define(g.Name, g.Function); err != nil {
			return nil, err
		}
	}
	if err := define(prog.Name, prog.Entry); err != nil {
		return nil, err
	}
	return lib, nil
}
