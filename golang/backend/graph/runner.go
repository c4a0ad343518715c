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

package graph

import (
	"slices"

	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

type (
	execNode interface {
		shape() *shape.Shape
		kernelFactory() kernels.Factory
		exec(*executor) (kernels.Array, error)
	}

	executor struct {
		args   []*platform.Handle
		shared []kernels.Array
	}

	// Kernel is a compiled primitive function.
	// The last argument of a call is the output slot set by the kernel.
	Kernel struct {
		graph  *Graph
		inputs []*argument
		output execNode
	}
)

func (g *Graph) compile(inputs []*argument, output execNode) *Kernel {
	return &Kernel{graph: g, inputs: inputs, output: output}
}

// Name of the kernel.
func (k *Kernel) Name() string {
	return k.graph.funcName
}

// Arity returns the number of inputs plus one for the output slot.
func (k *Kernel) Arity() int {
	return len(k.inputs) + 1
}

// OutputShape returns the shape of the array set in the output slot.
func (k *Kernel) OutputShape() *shape.Shape {
	return k.output.shape()
}

func checkArg(arg *argument, handle *platform.Handle) error {
	if handle == nil || handle.Array() == nil {
		return errors.Errorf("argument %s not set", arg.name)
	}
	got, want := handle.Shape(), arg.shape()
	if got.DType != want.DType || !slices.Equal(got.AxisLengths, want.AxisLengths) {
		return errors.Errorf("argument %s: got shape %s but want %s", arg.name, got.String(), want.String())
	}
	return nil
}

// Call the kernel.
func (k *Kernel) Call(args []*platform.Handle) error {
	if len(args) != k.Arity() {
		return errors.Errorf("kernel %s: got %d argument(s) but want %d", k.Name(), len(args), k.Arity())
	}
	inputs, out := args[:len(k.inputs)], args[len(k.inputs)]
	for i, arg := range k.inputs {
		if err := checkArg(arg, inputs[i]); err != nil {
			return errors.Wrapf(err, "kernel %s", k.Name())
		}
	}
	if out == nil {
		return errors.Errorf("kernel %s: nil output slot", k.Name())
	}
	exec := &executor{
		args:   inputs,
		shared: make([]kernels.Array, k.graph.numShared),
	}
	value, err := k.output.exec(exec)
	if err != nil {
		return errors.Wrapf(err, "kernel %s", k.Name())
	}
	// Parameters and constants are returned as is: the output owns a copy.
	switch k.output.(type) {
	case *argument, *constant, *shared:
		value = value.Copy()
	}
	return out.Set(value)
}
