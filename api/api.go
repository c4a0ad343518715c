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

// Package api compiles a function of a module into a native entry point.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gx-org/aot/api/entry"
	"github.com/gx-org/aot/api/options"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/golang/emitter"
	"github.com/pkg/errors"
)

// Compiled is a program compiled ahead of time.
type Compiled struct {
	// Program lowered from the source.
	Program *emitter.Program
	// Source emitted for the program.
	Source *emitter.Source
	// Library linking the program.
	Library *emitter.Library
	// Func is the entry point of the program.
	Func *entry.Func
}

// entryFunction returns the function to lower given an entry expression.
// A global is wrapped into a function calling it.
func entryFunction(mod *ir.Module, expr ir.Expr) (*ir.Function, error) {
	switch exprT := expr.(type) {
	case *ir.Function:
		return exprT, nil
	case *ir.GlobalVar:
		if _, ok := mod.Lookup(exprT.Name); !ok {
			return nil, errors.Errorf("global %s not defined in module %s", exprT.Name, mod.Name())
		}
		params := make([]*ir.Var, len(exprT.Typ.Params))
		args := make([]ir.Expr, len(params))
		for i, typ := range exprT.Typ.Params {
			params[i] = ir.NewVar(fmt.Sprintf("arg%d", i), typ)
			args[i] = params[i]
		}
		call := &ir.Call{Callee: exprT, Args: args, Typ: exprT.Typ.Result}
		return ir.NewFunction(params, call, exprT.Typ.Result), nil
	}
	return nil, errors.Errorf("cannot compile %T: entry must be a function or a global", expr)
}

// Compile lowers an entry expression of a module, emits the program, links it,
// and returns its entry point.
func Compile(ctx context.Context, mod *ir.Module, expr ir.Expr, name string, opts ...options.Option) (*Compiled, error) {
	if name == "" {
		return nil, errors.Errorf("missing entry point name")
	}
	o := options.New(opts...)
	fn, err := entryFunction(mod, expr)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	comp := aot.New(mod, o.Backend, aot.WithRegistry(o.Registry), aot.WithLogger(o.Log))
	lowered, err := comp.LowerFunction(fn)
	if err != nil {
		return nil, err
	}
	prog := &emitter.Program{
		Name:       name,
		Entry:      lowered,
		Globals:    comp.Globals(),
		Registry:   comp.Registry(),
		Package:    o.Package,
		ModulePath: o.ModulePath,
		Runtime:    o.Runtime,
	}
	src, err := emitter.Emit(prog)
	if err != nil {
		return nil, err
	}
	o.Log.Debugf("%s lowered in %s: %d kernel(s), %d global(s), %d captured parameter(s)", name, time.Since(start), len(src.Kernels), len(prog.Globals), len(src.Params))
	lib, err := o.Linker.Link(ctx, prog, src)
	if err != nil {
		return nil, err
	}
	var entryOpts []entry.Option
	if o.Trace != nil {
		entryOpts = append(entryOpts, entry.WithTrace(o.Trace))
	}
	f, err := entry.New(lib, name, entryOpts...)
	if err != nil {
		return nil, err
	}
	o.Log.Infof("%s compiled in %s", name, time.Since(start))
	return &Compiled{
		Program: prog,
		Source:  src,
		Library: lib,
		Func:    f,
	}, nil
}
