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

package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
)

type (
	// Type of an expression, resolved by the type inference pass.
	Type interface {
		typ()
		String() string
	}

	// TensorType is the type of a tensor given its data type and axis lengths.
	// An empty list of axis lengths denotes a scalar.
	TensorType struct {
		Shape shape.Shape
	}

	// TupleType is the type of a tuple.
	TupleType struct {
		Fields []Type
	}

	// FuncType is the type of a function.
	FuncType struct {
		Params []Type
		Result Type
	}

	// DataType is an algebraic data type, defined by its constructors.
	DataType struct {
		Name         string
		Constructors []*Constructor
	}
)

var (
	_ Type = (*TensorType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*FuncType)(nil)
	_ Type = (*DataType)(nil)
)

// Tensor returns a tensor type.
func Tensor(dt dtype.DataType, dims ...int) *TensorType {
	return &TensorType{Shape: shape.Shape{DType: dt, AxisLengths: dims}}
}

// Scalar returns the type of a scalar.
func Scalar(dt dtype.DataType) *TensorType {
	return Tensor(dt)
}

func (*TensorType) typ() {}

// DType returns the data type of the elements of the tensor.
func (t *TensorType) DType() dtype.DataType {
	return t.Shape.DType
}

// Dims returns the length of each axis.
func (t *TensorType) Dims() []int {
	return t.Shape.AxisLengths
}

// String representation of the type.
func (t *TensorType) String() string {
	var b strings.Builder
	for _, d := range t.Shape.AxisLengths {
		fmt.Fprintf(&b, "[%d]", d)
	}
	b.WriteString(DTypeName(t.Shape.DType))
	return b.String()
}

// DTypeName returns the Go name of a data type.
func DTypeName(dt dtype.DataType) string {
	switch dt {
	case dtype.Bool:
		return "bool"
	case dtype.Float32:
		return "float32"
	case dtype.Float64:
		return "float64"
	case dtype.Int32:
		return "int32"
	case dtype.Int64:
		return "int64"
	}
	return dt.String()
}

// TupleOf returns a tuple type.
func TupleOf(fields ...Type) *TupleType {
	return &TupleType{Fields: fields}
}

func (*TupleType) typ() {}

// String representation of the type.
func (t *TupleType) String() string {
	return "(" + typesString(t.Fields) + ")"
}

// Func returns a function type.
func Func(result Type, params ...Type) *FuncType {
	return &FuncType{Params: params, Result: result}
}

func (*FuncType) typ() {}

// String representation of the type.
func (t *FuncType) String() string {
	return fmt.Sprintf("fn(%s) %s", typesString(t.Params), typeString(t.Result))
}

// NewDataType returns a new algebraic data type.
// Constructors are added with AddConstructor.
func NewDataType(name string) *DataType {
	return &DataType{Name: name}
}

// AddConstructor defines a new constructor for the data type.
// Tags are assigned in declaration order, starting at 0.
func (t *DataType) AddConstructor(name string, inputs ...Type) *Constructor {
	ctor := &Constructor{
		Name:   name,
		Tag:    len(t.Constructors),
		Inputs: inputs,
		Data:   t,
	}
	t.Constructors = append(t.Constructors, ctor)
	return ctor
}

func (*DataType) typ() {}

// String representation of the type.
func (t *DataType) String() string {
	return t.Name
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func typesString(ts []Type) string {
	ss := make([]string, len(ts))
	for i, t := range ts {
		ss[i] = typeString(t)
	}
	return strings.Join(ss, ", ")
}

// IsTensor returns true if the type is a tensor type.
func IsTensor(t Type) bool {
	_, ok := t.(*TensorType)
	return ok
}

// TypeEqual returns true if two types are structurally equal.
// Algebraic data types are compared by identity.
func TypeEqual(a, b Type) bool {
	switch aT := a.(type) {
	case *TensorType:
		bT, ok := b.(*TensorType)
		return ok && aT.Shape.DType == bT.Shape.DType && slices.Equal(aT.Shape.AxisLengths, bT.Shape.AxisLengths)
	case *TupleType:
		bT, ok := b.(*TupleType)
		return ok && typesEqual(aT.Fields, bT.Fields)
	case *FuncType:
		bT, ok := b.(*FuncType)
		return ok && typesEqual(aT.Params, bT.Params) && TypeEqual(aT.Result, bT.Result)
	case *DataType:
		return a == b
	case nil:
		return b == nil
	}
	return false
}

func typesEqual(as, bs []Type) bool {
	return slices.EqualFunc(as, bs, TypeEqual)
}
