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

package entry

import (
	"fmt"

	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
)

type (
	// Tensor is a host tensor given its values and axis lengths.
	Tensor struct {
		Values any
		Dims   []int
	}

	// MarshalTypeError is returned when an argument cannot be converted to a value.
	MarshalTypeError struct {
		// Index of the argument.
		Index int
		// Type is the Go type of the argument.
		Type string
	}
)

func (e *MarshalTypeError) Error() string {
	return fmt.Sprintf("argument %d: cannot convert %s to a value", e.Index, e.Type)
}

func sendSlice[T float32 | float64 | int32 | int64 | bool](dev *platform.Device, vals []T) (values.Value, error) {
	return values.Send(dev, vals, []int{len(vals)})
}

func sendTensor(dev *platform.Device, index int, t Tensor) (values.Value, error) {
	switch t.Values.(type) {
	case []float32, []float64, []int32, []int64, []bool:
		return values.Send(dev, t.Values, t.Dims)
	}
	return nil, &MarshalTypeError{Index: index, Type: fmt.Sprintf("%T", t.Values)}
}

// ToValue converts a host argument into a value on a device.
// The index is reported in a MarshalTypeError if the argument cannot be converted.
func ToValue(dev *platform.Device, index int, arg any) (values.Value, error) {
	switch argT := arg.(type) {
	case values.Value:
		return argT, nil
	case *platform.Handle:
		if argT == nil {
			break
		}
		h, err := argT.ToDevice(dev)
		if err != nil {
			return nil, err
		}
		return values.NewTensor(h), nil
	case kernels.Array:
		return values.NewTensor(platform.NewHandle(dev, argT)), nil
	case Tensor:
		return sendTensor(dev, index, argT)
	case *Tensor:
		if argT == nil {
			break
		}
		return sendTensor(dev, index, *argT)
	case float32:
		return values.Atom(dev, argT), nil
	case float64:
		return values.Atom(dev, argT), nil
	case int32:
		return values.Atom(dev, argT), nil
	case int64:
		return values.Atom(dev, argT), nil
	case bool:
		return values.Atom(dev, argT), nil
	case []float32:
		return sendSlice(dev, argT)
	case []float64:
		return sendSlice(dev, argT)
	case []int32:
		return sendSlice(dev, argT)
	case []int64:
		return sendSlice(dev, argT)
	case []bool:
		return sendSlice(dev, argT)
	case []any:
		fields := make([]values.Value, len(argT))
		for i, field := range argT {
			var err error
			if fields[i], err = ToValue(dev, index, field); err != nil {
				return nil, err
			}
		}
		return values.NewTuple(fields...), nil
	}
	return nil, &MarshalTypeError{Index: index, Type: fmt.Sprintf("%T", arg)}
}
