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
	"reflect"

	"github.com/gx-org/aot/fmt/fmtarray"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

// arrayT is a multi-dimensional array stored by the host.
type arrayT[T goDataType] struct {
	shape   shape.Shape
	values  []T
	factory Factory
}

var _ Array = (*arrayT[int32])(nil)

func newArrayT[T goDataType](factory Factory, values []T, dims []int) *arrayT[T] {
	return &arrayT[T]{
		factory: factory,
		shape: shape.Shape{
			DType:       dtypeOf[T](),
			AxisLengths: dims,
		},
		values: values,
	}
}

func toArray[T goDataType](a Array) (*arrayT[T], error) {
	aT, ok := a.(*arrayT[T])
	if !ok {
		return nil, errors.Errorf("cannot use array %T as %s", a, reflect.TypeFor[*arrayT[T]]())
	}
	return aT, nil
}

// Values returns the flat values of an array.
// It returns an error if the array does not store values of type T.
func Values[T goDataType](a Array) ([]T, error) {
	aT, err := toArray[T](a)
	if err != nil {
		return nil, err
	}
	return aT.values, nil
}

// Shape of the array.
func (a *arrayT[T]) Shape() *shape.Shape {
	return &a.shape
}

// Factory available for arrays.
func (a *arrayT[T]) Factory() Factory {
	return a.factory
}

// ToAtom returns the atomic value contained in the array.
func (a *arrayT[T]) ToAtom() (any, error) {
	if len(a.values) != 1 {
		return nil, errors.Errorf("%s not atomic", a.shape.String())
	}
	return a.values[0], nil
}

// Copy returns a deep copy of the array.
func (a *arrayT[T]) Copy() Array {
	return &arrayT[T]{
		factory: a.factory,
		shape: shape.Shape{
			DType:       a.shape.DType,
			AxisLengths: append([]int{}, a.shape.AxisLengths...),
		},
		values: append([]T{}, a.values...),
	}
}

func (a *arrayT[T]) at(i int) T {
	if len(a.values) == 1 {
		return a.values[0]
	}
	return a.values[i]
}

// String representation of the array.
func (a *arrayT[T]) String() string {
	return fmtarray.Sprint(a.values, a.shape.AxisLengths)
}
