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

// Package aot lowers the typed source IR into the lowered IR.
//
// Primitive functions are compiled into kernels by a backend and cached in a
// registry given their structural fingerprint. Global functions are lowered
// lazily the first time they are referenced.
package aot

import (
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
)

type (
	// Option configures a compiler.
	Option func(*Compiler)

	// Compiler is a compilation session for a module.
	// A compiler is not safe for concurrent use.
	Compiler struct {
		mod      *ir.Module
		jit      KernelCompiler
		registry *Registry
		log      *logging.Logger

		globals []globalSlot
		// Globals in the order in which their resolution completed.
		order []ir.GlobalID
	}
)

// WithRegistry shares a kernel registry with the compiler.
// By default, a compiler owns a new registry.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// WithLogger sets the logger of the compiler.
func WithLogger(log *logging.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// New returns a new compiler for a module.
// Kernels are compiled with jit.
func New(mod *ir.Module, jit KernelCompiler, opts ...Option) *Compiler {
	c := &Compiler{
		mod:     mod,
		jit:     jit,
		globals: make([]globalSlot, len(mod.Definitions())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	return c
}

// Module compiled by the compiler.
func (c *Compiler) Module() *ir.Module {
	return c.mod
}

// Registry returns the kernel registry used by the compiler.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// Logger returns the logger of the compiler.
func (c *Compiler) Logger() *logging.Logger {
	return c.log
}

// Lower an expression.
func (c *Compiler) Lower(expr ir.Expr) (lowered.Node, error) {
	return c.lower(expr)
}

// LowerFunction lowers a function.
func (c *Compiler) LowerFunction(fn *ir.Function) (*lowered.Function, error) {
	return c.lowerFunction(fn)
}

// LowerGlobal resolves a global of the module and returns its lowered function.
func (c *Compiler) LowerGlobal(name string) (*lowered.Function, error) {
	gv, ok := c.mod.Global(name)
	if !ok {
		return nil, unsupportedf(&ir.GlobalVar{Name: name}, "global not defined in module %s", c.mod.Name())
	}
	if err := c.resolveGlobal(gv); err != nil {
		return nil, err
	}
	fn, _ := c.Global(name)
	return fn, nil
}
