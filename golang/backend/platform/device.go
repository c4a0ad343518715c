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
)

// Device is a device for the Go backend, that is a CPU.
type Device struct {
	plat *Platform
}

func newDevice(plat *Platform) *Device {
	return &Device{plat: plat}
}

// Platform owning the device.
func (dev *Device) Platform() *Platform {
	return dev.plat
}

// Send host values to the device.
// The values are copied.
func (dev *Device) Send(values any, dims []int) (*Handle, error) {
	array, err := kernels.NewArray(values, dims)
	if err != nil {
		return nil, err
	}
	return NewHandle(dev, array.Copy()), nil
}

// Zero allocates an array of zeros on the device.
func (dev *Device) Zero(sh *shape.Shape) (*Handle, error) {
	array, err := kernels.Zero(sh)
	if err != nil {
		return nil, err
	}
	return NewHandle(dev, array), nil
}

// Output returns an empty handle to pass as the destination of a kernel.
func (dev *Device) Output() *Handle {
	return &Handle{device: dev}
}
