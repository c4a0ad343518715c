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

// Package values implements the values manipulated by compiled programs.
package values

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
)

type (
	// Value is a runtime value.
	Value interface {
		value() // Make sure all values are implemented in this package.

		// String representation of the value.
		String() string
	}

	// Tensor is a value stored on a device.
	Tensor struct {
		handle *platform.Handle
	}

	// Tuple of values.
	Tuple struct {
		Fields []Value
	}

	// Data is a value of an algebraic data type.
	Data struct {
		Constructor *ir.Constructor
		Fields      []Value
	}

	// Closure is a function value.
	Closure struct {
		Name  string
		Arity int
		Fn    func([]Value) (Value, error)
	}
)

var (
	_ Value = (*Tensor)(nil)
	_ Value = (*Tuple)(nil)
	_ Value = (*Data)(nil)
	_ Value = (*Closure)(nil)
)

// NewTensor returns a tensor value given a device handle.
func NewTensor(h *platform.Handle) *Tensor {
	return &Tensor{handle: h}
}

// Send Go values to a device and returns the corresponding tensor.
func Send(dev *platform.Device, values any, dims []int) (*Tensor, error) {
	h, err := dev.Send(values, dims)
	if err != nil {
		return nil, err
	}
	return NewTensor(h), nil
}

// FromConstant sends the values of a constant to a device.
func FromConstant(dev *platform.Device, c *ir.Constant) (*Tensor, error) {
	return Send(dev, c.Values, c.Typ.Dims())
}

// Atom returns a scalar tensor on a device.
func Atom[T float32 | float64 | int32 | int64 | bool](dev *platform.Device, v T) *Tensor {
	t, err := Send(dev, []T{v}, nil)
	if err != nil {
		// A single value always matches a scalar shape.
		panic(err)
	}
	return t
}

func (*Tensor) value() {}

// Handle returns the device handle of the tensor.
func (t *Tensor) Handle() *platform.Handle {
	return t.handle
}

// Array returns the native array storing the tensor.
func (t *Tensor) Array() kernels.Array {
	return t.handle.Array()
}

// String representation of the tensor.
func (t *Tensor) String() string {
	return t.handle.String()
}

// NewTuple returns a tuple given its fields.
func NewTuple(fields ...Value) *Tuple {
	return &Tuple{Fields: fields}
}

func (*Tuple) value() {}

// String representation of the tuple.
func (t *Tuple) String() string {
	return "(" + valuesString(t.Fields) + ")"
}

func (*Data) value() {}

// Tag returns the tag of the constructor used to build the data.
func (d *Data) Tag() int {
	return d.Constructor.Tag
}

// String representation of the data.
func (d *Data) String() string {
	if len(d.Fields) == 0 {
		return d.Constructor.Name
	}
	return d.Constructor.Name + "(" + valuesString(d.Fields) + ")"
}

func (*Closure) value() {}

// Call the closure.
func (c *Closure) Call(args []Value) (Value, error) {
	if c.Arity >= 0 && len(args) != c.Arity {
		return nil, errors.Errorf("%s: got %d argument(s) but want %d", c.Name, len(args), c.Arity)
	}
	return c.Fn(args)
}

// String representation of the closure.
func (c *Closure) String() string {
	return fmt.Sprintf("func %s/%d", c.Name, c.Arity)
}

func valuesString(vals []Value) string {
	ss := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			ss[i] = "<nil>"
			continue
		}
		ss[i] = v.String()
	}
	return strings.Join(ss, ", ")
}

// Truth returns the boolean stored in a scalar tensor.
func Truth(v Value) (bool, error) {
	t, ok := v.(*Tensor)
	if !ok {
		return false, errors.Errorf("condition %s is not a tensor", v)
	}
	atom, err := t.handle.ToAtom()
	if err != nil {
		return false, err
	}
	b, ok := atom.(bool)
	if !ok {
		return false, errors.Errorf("condition %s is not a boolean", v)
	}
	return b, nil
}

// ToGo converts a value into Go values:
// scalars into Go scalars, arrays into Go slices, and tuples into []any.
// Data and closures are returned as is.
func ToGo(v Value) (any, error) {
	switch vT := v.(type) {
	case *Tensor:
		if vT.handle.Array() == nil {
			return nil, errors.Errorf("tensor not set")
		}
		if len(vT.handle.Shape().AxisLengths) == 0 {
			return vT.handle.ToAtom()
		}
		return flatValues(vT.handle.Array())
	case *Tuple:
		fields := make([]any, len(vT.Fields))
		for i, field := range vT.Fields {
			var err error
			if fields[i], err = ToGo(field); err != nil {
				return nil, err
			}
		}
		return fields, nil
	case *Data, *Closure:
		return v, nil
	}
	return nil, errors.Errorf("cannot convert %T to Go", v)
}

func cloneValues[T float32 | float64 | int32 | int64 | bool](a kernels.Array) (any, error) {
	vals, err := kernels.Values[T](a)
	if err != nil {
		return nil, err
	}
	return slices.Clone(vals), nil
}

func flatValues(a kernels.Array) (any, error) {
	switch a.Shape().DType {
	case dtype.Float32:
		return cloneValues[float32](a)
	case dtype.Float64:
		return cloneValues[float64](a)
	case dtype.Int32:
		return cloneValues[int32](a)
	case dtype.Int64:
		return cloneValues[int64](a)
	case dtype.Bool:
		return cloneValues[bool](a)
	}
	return nil, errors.Errorf("data type %s not supported", a.Shape().DType.String())
}
