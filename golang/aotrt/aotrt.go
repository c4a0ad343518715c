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

// Package aotrt is the runtime of compiled programs.
//
// Go source emitted by the compiler and the in-process linker both execute
// lowered programs by calling a Runtime.
package aotrt

import (
	"fmt"

	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
)

type (
	// Func is the signature of a function executed by the runtime.
	Func func(r *Runtime, args []values.Value) (values.Value, error)

	global struct {
		arity int
		fn    Func
	}

	library struct {
		registry *aot.Registry
		device   *platform.Device
		globals  map[string]global
		ctors    map[string]*ir.Constructor
	}

	// Runtime executes kernels and functions of a compiled program.
	// Global definitions are shared by all the runtimes bound from the same root.
	// A runtime can be used concurrently once all globals have been defined.
	Runtime struct {
		lib    *library
		params []values.Value
	}
)

// New returns a runtime executing the kernels of a registry on a device.
func New(registry *aot.Registry, dev *platform.Device) *Runtime {
	return &Runtime{lib: &library{
		registry: registry,
		device:   dev,
		globals:  make(map[string]global),
		ctors:    make(map[string]*ir.Constructor),
	}}
}

// Device on which kernels are executed.
func (r *Runtime) Device() *platform.Device {
	return r.lib.device
}

// Bind returns a runtime sharing the globals of r with a set of captured parameters.
func (r *Runtime) Bind(params []values.Value) *Runtime {
	return &Runtime{lib: r.lib, params: params}
}

// RegisterData registers the constructors of an algebraic data type.
func (r *Runtime) RegisterData(dt *ir.DataType) error {
	for _, ctor := range dt.Constructors {
		if prev, ok := r.lib.ctors[ctor.Name]; ok && prev != ctor {
			return errors.Errorf("constructor %s already registered for %s", ctor.Name, prev.Data.Name)
		}
		r.lib.ctors[ctor.Name] = ctor
	}
	return nil
}

// Define a global function.
func (r *Runtime) Define(name string, arity int, fn Func) error {
	if _, ok := r.lib.globals[name]; ok {
		return errors.Errorf("global %s already defined", name)
	}
	r.lib.globals[name] = global{arity: arity, fn: fn}
	return nil
}

// Global returns a global function as a closure.
func (r *Runtime) Global(name string) (values.Value, error) {
	g, ok := r.lib.globals[name]
	if !ok {
		return nil, errors.Errorf("undefined global %s", name)
	}
	return &values.Closure{
		Name:  name,
		Arity: g.arity,
		Fn: func(args []values.Value) (values.Value, error) {
			return g.fn(r, args)
		},
	}, nil
}

// Closure returns an anonymous function value.
func (r *Runtime) Closure(arity int, fn func([]values.Value) (values.Value, error)) values.Value {
	return &values.Closure{Name: "func", Arity: arity, Fn: fn}
}

// Param returns a captured parameter.
func (r *Runtime) Param(i int) (values.Value, error) {
	if i < 0 || i >= len(r.params) {
		return nil, errors.Errorf("parameter %d out of range: %d parameter(s) bound", i, len(r.params))
	}
	return r.params[i], nil
}

func tensorHandle(v values.Value) (*platform.Handle, error) {
	t, ok := v.(*values.Tensor)
	if !ok {
		return nil, errors.Errorf("%s is not a tensor", valueString(v))
	}
	return t.Handle(), nil
}

func valueString(v values.Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T %s", v, v.String())
}

// PackedCall calls a kernel from the registry.
// With the spread convention, the fields of the single tuple argument
// are passed as kernel inputs.
func (r *Runtime) PackedCall(kernel string, arity int, conv lowered.Convention, args ...values.Value) (values.Value, error) {
	k, ok := r.lib.registry.Lookup(kernel)
	if !ok {
		return nil, errors.Errorf("kernel %s not found", kernel)
	}
	if conv == lowered.Spread {
		if len(args) != 1 {
			return nil, errors.Errorf("kernel %s: spread call with %d argument(s)", kernel, len(args))
		}
		tuple, ok := args[0].(*values.Tuple)
		if !ok {
			return nil, errors.Errorf("kernel %s: cannot spread %s", kernel, valueString(args[0]))
		}
		args = tuple.Fields
	}
	if len(args)+1 != arity {
		return nil, errors.Errorf("kernel %s: %d input(s) for arity %d", kernel, len(args), arity)
	}
	handles := make([]*platform.Handle, arity)
	for i, arg := range args {
		var err error
		if handles[i], err = tensorHandle(arg); err != nil {
			return nil, errors.Wrapf(err, "kernel %s: argument %d", kernel, i)
		}
	}
	out := r.lib.device.Output()
	handles[arity-1] = out
	if err := k.Call(handles); err != nil {
		return nil, err
	}
	return values.NewTensor(out), nil
}

// Invoke calls a function value.
func (r *Runtime) Invoke(callee values.Value, args ...values.Value) (values.Value, error) {
	c, ok := callee.(*values.Closure)
	if !ok {
		return nil, errors.Errorf("cannot call %s", valueString(callee))
	}
	return c.Call(args)
}

// If evaluates one of two branches given a boolean scalar.
func (r *Runtime) If(cond values.Value, then, els func() (values.Value, error)) (values.Value, error) {
	b, err := values.Truth(cond)
	if err != nil {
		return nil, err
	}
	if b {
		return then()
	}
	return els()
}

// Tuple groups values.
func (r *Runtime) Tuple(fields ...values.Value) values.Value {
	return values.NewTuple(fields...)
}

// Field returns a field of a tuple.
func (r *Runtime) Field(v values.Value, i int) (values.Value, error) {
	tuple, ok := v.(*values.Tuple)
	if !ok {
		return nil, errors.Errorf("cannot project field %d of %s", i, valueString(v))
	}
	if i < 0 || i >= len(tuple.Fields) {
		return nil, errors.Errorf("field %d out of range for %s", i, tuple.String())
	}
	return tuple.Fields[i], nil
}

// Construct builds a value of an algebraic data type.
func (r *Runtime) Construct(ctorName string, tag int, args ...values.Value) (values.Value, error) {
	ctor, ok := r.lib.ctors[ctorName]
	if !ok {
		return nil, errors.Errorf("unknown constructor %s", ctorName)
	}
	if ctor.Tag != tag {
		return nil, errors.Errorf("constructor %s has tag %d but the program expects %d", ctorName, ctor.Tag, tag)
	}
	if len(args) != len(ctor.Inputs) {
		return nil, errors.Errorf("constructor %s: got %d argument(s) but want %d", ctorName, len(args), len(ctor.Inputs))
	}
	return &values.Data{Constructor: ctor, Fields: args}, nil
}
