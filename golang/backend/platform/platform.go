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

// Package platform implements the native Go platform running compiled kernels.
package platform

import "github.com/gx-org/aot/golang/backend/kernels"

// Platform implements a native platform in Go.
type Platform struct {
	dev *Device
}

// New returns a Go native platform.
func New() *Platform {
	plat := &Platform{}
	plat.dev = newDevice(plat)
	return plat
}

// Name of the platform.
func (plat *Platform) Name() string {
	return "gonative"
}

// Device returns the CPU device.
func (plat *Platform) Device() *Device {
	return plat.dev
}

// FromValue returns a handle on a value stored on the device of the platform.
func (plat *Platform) FromValue(x kernels.Array) *Handle {
	return NewHandle(plat.dev, x)
}
