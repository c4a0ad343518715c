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

// Package kernels implement Go kernels for compiled primitive operators.
package kernels

import (
	"go/token"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

type (
	// Array is a value (atomic or array) managed by the backend.
	Array interface {
		// Shape returns the shape of the value.
		Shape() *shape.Shape

		// Factory returns the kernels available for the value.
		Factory() Factory

		// ToAtom returns the atomic value contained in the array.
		// It returns an error if the value is not atomic, that is if the array
		// contains more than one value.
		ToAtom() (any, error)

		// Copy returns a deep copy of the array.
		Copy() Array

		// String representation of the array.
		String() string
	}

	// Unary like - or exp.
	Unary func(Array) (Array, error)

	// Binary like +, -, *, /.
	Binary func(Array, Array) (Array, error)

	// Factory creates kernels for arrays for all supported types.
	Factory interface {
		// BinaryOp returns a kernel applying a binary operator and the shape of its result.
		BinaryOp(token.Token, *shape.Shape, *shape.Shape) (Binary, *shape.Shape, error)

		// UnaryOp returns a kernel applying a unary operator and the shape of its result.
		UnaryOp(token.Token, *shape.Shape) (Unary, *shape.Shape, error)

		// Cast returns a kernel converting an array to another data type.
		Cast(target dtype.DataType, dims []int) (Unary, *shape.Shape, Factory, error)

		// Math returns the factory for math functions or nil if not supported.
		Math() MathFactory
	}

	goAlgebra interface {
		float32 | float64 | int32 | int64
	}

	goDataType interface {
		bool | goAlgebra
	}
)

func isAtomic(sh *shape.Shape) bool {
	return len(sh.AxisLengths) == 0
}

func dtypeOf[T goDataType]() dtype.DataType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return dtype.Bool
	case float32:
		return dtype.Float32
	case float64:
		return dtype.Float64
	case int32:
		return dtype.Int32
	default:
		return dtype.Int64
	}
}

// FactoryFor returns a factory given a data type.
func FactoryFor(dt dtype.DataType) (Factory, error) {
	switch dt {
	case dtype.Bool:
		return boolFactory{}, nil
	case dtype.Float32:
		return algebraicFactory[float32]{}, nil
	case dtype.Float64:
		return algebraicFactory[float64]{}, nil
	case dtype.Int32:
		return integerFactory[int32]{}, nil
	case dtype.Int64:
		return integerFactory[int64]{}, nil
	default:
		return nil, errors.Errorf("no factory for %s", dt.String())
	}
}

// NewArray returns an array given a slice of Go values and the length of each axis.
// The values are not copied.
func NewArray(values any, dims []int) (Array, error) {
	var arr Array
	var n int
	switch vals := values.(type) {
	case []bool:
		arr, n = ToBoolArray(vals, dims), len(vals)
	case []float32:
		arr, n = ToFloatArray(vals, dims), len(vals)
	case []float64:
		arr, n = ToFloatArray(vals, dims), len(vals)
	case []int32:
		arr, n = ToIntegerArray(vals, dims), len(vals)
	case []int64:
		arr, n = ToIntegerArray(vals, dims), len(vals)
	default:
		return nil, errors.Errorf("cannot create an array from %T: not supported", values)
	}
	if want := arr.Shape().Size(); n != want {
		return nil, errors.Errorf("mismatch between the number of values (=%d) and the number of elements (=%d) in shape %s", n, want, arr.Shape().String())
	}
	return arr, nil
}

// Zero returns an array of zeros given a shape.
func Zero(sh *shape.Shape) (Array, error) {
	switch sh.DType {
	case dtype.Bool:
		return ToBoolArray(make([]bool, sh.Size()), sh.AxisLengths), nil
	case dtype.Float32:
		return ToFloatArray(make([]float32, sh.Size()), sh.AxisLengths), nil
	case dtype.Float64:
		return ToFloatArray(make([]float64, sh.Size()), sh.AxisLengths), nil
	case dtype.Int32:
		return ToIntegerArray(make([]int32, sh.Size()), sh.AxisLengths), nil
	case dtype.Int64:
		return ToIntegerArray(make([]int64, sh.Size()), sh.AxisLengths), nil
	default:
		return nil, errors.Errorf("cannot create an array of data type %s: not supported", sh.DType)
	}
}
