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

package platform

import (
	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

// Handle to a tensor stored by the backend.
type Handle struct {
	device *Device
	array  kernels.Array
}

// NewHandle returns a new device handle given an array and a device.
func NewHandle(dev *Device, array kernels.Array) *Handle {
	return &Handle{device: dev, array: array}
}

// Device on which the handle is located.
func (h *Handle) Device() *Device {
	return h.device
}

// Shape of the data stored by the handle.
// Returns nil if the handle has not been set.
func (h *Handle) Shape() *shape.Shape {
	if h.array == nil {
		return nil
	}
	return h.array.Shape()
}

// Array returns the underlying array storing the data for the handle.
func (h *Handle) Array() kernels.Array {
	return h.array
}

// Set the array of an output handle.
// It returns an error if the handle already stores a value.
func (h *Handle) Set(array kernels.Array) error {
	if h.array != nil {
		return errors.Errorf("output handle already set to %s", h.array.String())
	}
	h.array = array
	return nil
}

// ToAtom returns the atomic value stored by the handle.
func (h *Handle) ToAtom() (any, error) {
	if h.array == nil {
		return nil, errors.Errorf("handle not set")
	}
	return h.array.ToAtom()
}

// ToDevice transfers the handle to a device.
func (h *Handle) ToDevice(dev *Device) (*Handle, error) {
	if h.array == nil {
		return nil, errors.Errorf("cannot transfer a handle not set")
	}
	if h.device == dev {
		return h, nil
	}
	return NewHandle(dev, h.array.Copy()), nil
}

// String representation of the handle.
func (h *Handle) String() string {
	if h.array == nil {
		return "<unset>"
	}
	return h.array.String()
}
