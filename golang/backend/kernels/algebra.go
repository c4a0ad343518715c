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

package kernels

import (
	"go/token"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

type algebraicFactory[T goAlgebra] struct{}

var _ Factory = (*algebraicFactory[float32])(nil)

// broadcastShape returns the shape of the result of a binary operator.
// Atomic values are broadcast to the shape of the other operand.
func broadcastShape(dt dtype.DataType, x, y *shape.Shape) (*shape.Shape, error) {
	if x.DType != y.DType {
		return nil, errors.Errorf("mismatched data types %s and %s", x.DType.String(), y.DType.String())
	}
	switch {
	case isAtomic(x):
		return &shape.Shape{DType: dt, AxisLengths: y.AxisLengths}, nil
	case isAtomic(y):
		return &shape.Shape{DType: dt, AxisLengths: x.AxisLengths}, nil
	}
	if len(x.AxisLengths) != len(y.AxisLengths) {
		return nil, errors.Errorf("cannot apply an operator between shapes %s and %s", x.String(), y.String())
	}
	for i, xi := range x.AxisLengths {
		if xi != y.AxisLengths[i] {
			return nil, errors.Errorf("cannot apply an operator between shapes %s and %s", x.String(), y.String())
		}
	}
	return &shape.Shape{DType: dt, AxisLengths: x.AxisLengths}, nil
}

// binaryKernel returns a kernel applying f elementwise, broadcasting atomic operands.
func binaryKernel[T, U goDataType](f func(T, T) U, out *shape.Shape, factory Factory) Binary {
	return func(xVal, yVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		y, err := toArray[T](yVal)
		if err != nil {
			return nil, err
		}
		n := max(len(x.values), len(y.values))
		if (len(x.values) != n && len(x.values) != 1) || (len(y.values) != n && len(y.values) != 1) {
			return nil, errors.Errorf("cannot apply an operator between %s and %s", x.shape.String(), y.shape.String())
		}
		z := make([]U, n)
		for i := range z {
			z[i] = f(x.at(i), y.at(i))
		}
		return newArrayT(factory, z, out.AxisLengths), nil
	}
}

// BinaryOp creates a new kernel for a binary operator.
func (f algebraicFactory[T]) BinaryOp(op token.Token, x, y *shape.Shape) (Binary, *shape.Shape, error) {
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.GTR, token.LEQ, token.GEQ:
		out, err := broadcastShape(dtype.Bool, x, y)
		if err != nil {
			return nil, nil, err
		}
		cmp, err := comparison[T](op)
		if err != nil {
			return nil, nil, err
		}
		return binaryKernel(cmp, out, boolFactory{}), out, nil
	}
	out, err := broadcastShape(x.DType, x, y)
	if err != nil {
		return nil, nil, err
	}
	var apply func(T, T) T
	switch op {
	case token.ADD:
		apply = func(a, b T) T { return a + b }
	case token.SUB:
		apply = func(a, b T) T { return a - b }
	case token.MUL:
		apply = func(a, b T) T { return a * b }
	case token.QUO:
		apply = func(a, b T) T { return a / b }
	default:
		return nil, nil, errors.Errorf("operator %s not supported for %s", op.String(), x.DType.String())
	}
	return binaryKernel(apply, out, f), out, nil
}

func comparison[T goAlgebra](op token.Token) (func(T, T) bool, error) {
	switch op {
	case token.EQL:
		return func(a, b T) bool { return a == b }, nil
	case token.NEQ:
		return func(a, b T) bool { return a != b }, nil
	case token.LSS:
		return func(a, b T) bool { return a < b }, nil
	case token.GTR:
		return func(a, b T) bool { return a > b }, nil
	case token.LEQ:
		return func(a, b T) bool { return a <= b }, nil
	case token.GEQ:
		return func(a, b T) bool { return a >= b }, nil
	}
	return nil, errors.Errorf("operator %s is not a comparison", op.String())
}

// UnaryOp creates a new kernel for a unary operator.
func (f algebraicFactory[T]) UnaryOp(op token.Token, x *shape.Shape) (Unary, *shape.Shape, error) {
	switch op {
	case token.SUB:
		return mapKernel[T](func(v T) T { return -v }, f), x, nil
	case token.ADD:
		return func(a Array) (Array, error) { return a.Copy(), nil }, x, nil
	default:
		return nil, nil, errors.Errorf("operator %s not supported for %s", op.String(), x.DType.String())
	}
}

func mapKernel[T goAlgebra](g func(T) T, factory Factory) Unary {
	return func(xVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		z := make([]T, len(x.values))
		for i, xi := range x.values {
			z[i] = g(xi)
		}
		return newArrayT(factory, z, x.shape.AxisLengths), nil
	}
}

func castArray[T, U goAlgebra](dims []int, factory Factory) Unary {
	return func(xVal Array) (Array, error) {
		x, err := toArray[T](xVal)
		if err != nil {
			return nil, err
		}
		z := make([]U, len(x.values))
		for i, xi := range x.values {
			z[i] = U(xi)
		}
		return newArrayT(factory, z, dims), nil
	}
}

// Cast an array to another algebraic data type.
func (algebraicFactory[T]) Cast(kind dtype.DataType, dims []int) (Unary, *shape.Shape, Factory, error) {
	shap := &shape.Shape{
		DType:       kind,
		AxisLengths: dims,
	}
	switch kind {
	case dtype.Float32:
		fac := algebraicFactory[float32]{}
		return castArray[T, float32](dims, fac), shap, fac, nil
	case dtype.Float64:
		fac := algebraicFactory[float64]{}
		return castArray[T, float64](dims, fac), shap, fac, nil
	case dtype.Int32:
		fac := integerFactory[int32]{}
		return castArray[T, int32](dims, fac), shap, fac, nil
	case dtype.Int64:
		fac := integerFactory[int64]{}
		return castArray[T, int64](dims, fac), shap, fac, nil
	default:
		return nil, nil, nil, errors.Errorf("cast to %s not supported", kind.String())
	}
}

// Math returns the factory for math functions.
func (algebraicFactory[T]) Math() MathFactory {
	return mathFactory[T]{}
}

type integerFactory[T int32 | int64] struct {
	algebraicFactory[T]
}

// BinaryOp creates a new kernel for a binary operator.
// Integer divisions check for zero divisors.
func (f integerFactory[T]) BinaryOp(op token.Token, x, y *shape.Shape) (Binary, *shape.Shape, error) {
	if op != token.QUO && op != token.REM {
		kernel, out, err := f.algebraicFactory.BinaryOp(op, x, y)
		if err != nil {
			return nil, nil, err
		}
		if out.DType != dtype.Bool {
			kernel = rewrapInteger[T](kernel, f)
		}
		return kernel, out, nil
	}
	out, err := broadcastShape(x.DType, x, y)
	if err != nil {
		return nil, nil, err
	}
	div := func(a, b T) T { return a / b }
	if op == token.REM {
		div = func(a, b T) T { return a % b }
	}
	kernel := binaryKernel(div, out, f)
	return func(xVal, yVal Array) (Array, error) {
		y, err := toArray[T](yVal)
		if err != nil {
			return nil, err
		}
		for _, yi := range y.values {
			if yi == 0 {
				return nil, errors.Errorf("integer division by zero")
			}
		}
		return kernel(xVal, yVal)
	}, out, nil
}

// UnaryOp creates a new kernel for a unary operator.
func (f integerFactory[T]) UnaryOp(op token.Token, x *shape.Shape) (Unary, *shape.Shape, error) {
	kernel, out, err := f.algebraicFactory.UnaryOp(op, x)
	if err != nil {
		return nil, nil, err
	}
	return func(a Array) (Array, error) {
		z, err := kernel(a)
		if err != nil {
			return nil, err
		}
		z.(*arrayT[T]).factory = f
		return z, nil
	}, out, nil
}

func rewrapInteger[T int32 | int64](kernel Binary, f Factory) Binary {
	return func(x, y Array) (Array, error) {
		z, err := kernel(x, y)
		if err != nil {
			return nil, err
		}
		z.(*arrayT[T]).factory = f
		return z, nil
	}
}

// ToFloatArray converts values and a shape into a native multi-dimensional array owned by a backend.
func ToFloatArray[T float32 | float64](values []T, dims []int) Array {
	return newArrayT(algebraicFactory[T]{}, values, dims)
}

// ToIntegerArray converts values and a shape into a native multi-dimensional array owned by a backend.
func ToIntegerArray[T int32 | int64](values []T, dims []int) Array {
	return newArrayT(integerFactory[T]{}, values, dims)
}

// ToFloatAtom converts a value into an atom owned by a backend.
func ToFloatAtom[T float32 | float64](val T) Array {
	return ToFloatArray([]T{val}, nil)
}

// ToIntegerAtom converts a value into an atom owned by a backend.
func ToIntegerAtom[T int32 | int64](val T) Array {
	return ToIntegerArray([]T{val}, nil)
}
