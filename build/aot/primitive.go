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

package aot

import (
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
)

// callingConvention returns the calling convention of a kernel and its number of inputs.
func callingConvention(site ir.Expr, fn *ir.Function, args []ir.Expr) (lowered.Convention, int, error) {
	if len(args) == 1 {
		if tuple, ok := args[0].Type().(*ir.TupleType); ok {
			for i, field := range tuple.Fields {
				if !ir.IsTensor(field) {
					return lowered.Flat, 0, typeShapef(site, "field %d of the tuple argument has type %s: not a tensor", i, field)
				}
			}
			return lowered.Spread, len(tuple.Fields), nil
		}
	}
	for i, arg := range args {
		if argT := arg.Type(); !ir.IsTensor(argT) {
			return lowered.Flat, 0, typeShapef(site, "argument %d has type %v: not a tensor or a single tuple of tensors", i, argT)
		}
	}
	if len(args) != len(fn.Params) {
		return lowered.Flat, 0, typeShapef(site, "primitive function has %d parameter(s) but is called with %d argument(s)", len(fn.Params), len(args))
	}
	return lowered.Flat, len(fn.Params), nil
}

// lowerPrimitive compiles a primitive function, if not already compiled,
// and returns a packed call to its kernel.
func (c *Compiler) lowerPrimitive(site ir.Expr, fn *ir.Function, args []ir.Expr) (*lowered.PackedCall, error) {
	conv, numInputs, err := callingConvention(site, fn, args)
	if err != nil {
		return nil, err
	}
	fp, err := ir.FingerprintOf(fn)
	if err != nil {
		return nil, &KernelCompilationError{Kernel: "<unnamed>", Err: err}
	}
	arity := numInputs + 1
	kernel, err := c.registry.LoadOrCompile(fp, func(name string) (Kernel, error) {
		c.log.Debugf("compiling kernel %s (%s, arity %d)", name, conv, arity)
		return c.jit.CompileKernel(name, fn)
	})
	if err != nil {
		return nil, err
	}
	if kernel.Arity() != arity {
		return nil, typeShapef(site, "kernel %s has arity %d but the call requires %d", kernel.Name(), kernel.Arity(), arity)
	}
	lowArgs, err := c.lowerAll(args)
	if err != nil {
		return nil, err
	}
	return &lowered.PackedCall{
		Kernel:     kernel.Name(),
		Arity:      arity,
		Args:       lowArgs,
		Typ:        fn.RetType,
		Convention: conv,
	}, nil
}
