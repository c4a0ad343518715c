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

type boolFactory struct{}

var _ Factory = (*boolFactory)(nil)

// BinaryOp creates a new kernel for a binary boolean operator.
func (f boolFactory) BinaryOp(op token.Token, x, y *shape.Shape) (Binary, *shape.Shape, error) {
	out, err := broadcastShape(dtype.Bool, x, y)
	if err != nil {
		return nil, nil, err
	}
	var apply func(a, b bool) bool
	switch op {
	case token.LAND:
		apply = func(a, b bool) bool { return a && b }
	case token.LOR:
		apply = func(a, b bool) bool { return a || b }
	case token.EQL:
		apply = func(a, b bool) bool { return a == b }
	case token.NEQ:
		apply = func(a, b bool) bool { return a != b }
	default:
		return nil, nil, errors.Errorf("operator %s not supported for %s", op.String(), x.DType.String())
	}
	return binaryKernel(apply, out, f), out, nil
}

// UnaryOp creates a new kernel for a unary boolean operator.
func (f boolFactory) UnaryOp(op token.Token, x *shape.Shape) (Unary, *shape.Shape, error) {
	if op != token.NOT {
		return nil, nil, errors.Errorf("operator %s not supported for %s", op.String(), x.DType.String())
	}
	return func(xVal Array) (Array, error) {
		x, err := toArray[bool](xVal)
		if err != nil {
			return nil, err
		}
		z := make([]bool, len(x.values))
		for i, xi := range x.values {
			z[i] = !xi
		}
		return newArrayT(f, z, x.shape.AxisLengths), nil
	}, x, nil
}

// Cast a boolean array to another type.
func (boolFactory) Cast(dtype.DataType, []int) (Unary, *shape.Shape, Factory, error) {
	return nil, nil, nil, errors.Errorf("cast from bool not supported")
}

// Math returns nil: booleans do not support math functions.
func (boolFactory) Math() MathFactory {
	return nil
}

// ToBoolAtom converts a value into an atom owned by a backend.
func ToBoolAtom(val bool) Array {
	return ToBoolArray([]bool{val}, nil)
}

// ToBoolArray converts values and a shape into a native multi-dimensional array owned by a backend.
func ToBoolArray(values []bool, dims []int) Array {
	return newArrayT(boolFactory{}, values, dims)
}
