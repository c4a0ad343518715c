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

// Package backend implements a Go native backend compiling primitive
// functions into kernels.
package backend

import (
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/golang/backend/graph"
	"github.com/gx-org/aot/golang/backend/platform"
)

// Backend compiles kernels for the Go native platform.
type Backend struct {
	plat *platform.Platform
}

var _ aot.KernelCompiler = (*Backend)(nil)

// New native Go backend.
func New() *Backend {
	return &Backend{plat: platform.New()}
}

// Platform returns the Go native platform.
func (bck *Backend) Platform() *platform.Platform {
	return bck.plat
}

// CompileKernel compiles a primitive function into a Go native kernel.
func (bck *Backend) CompileKernel(name string, fn *ir.Function) (aot.Kernel, error) {
	kernel, err := graph.Compile(bck.plat, name, fn)
	if err != nil {
		return nil, err
	}
	return kernel, nil
}
