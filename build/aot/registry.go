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

package aot

import (
	"slices"
	"sync"
	"sync/atomic"

	gxsync "github.com/gx-org/aot/base/sync"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
)

type (
	// Kernel is a primitive function compiled by a backend.
	Kernel interface {
		// Name of the kernel in the registry.
		Name() string
		// Arity is the number of parameters of the kernel, that is the number of
		// inputs plus one output slot.
		Arity() int
		// Call the kernel. The last handle is the output slot set by the kernel.
		Call(args []*platform.Handle) error
	}

	// KernelCompiler compiles primitive functions into kernels.
	KernelCompiler interface {
		CompileKernel(name string, fn *ir.Function) (Kernel, error)
	}

	// KernelCompilerFunc is a function implementing KernelCompiler.
	KernelCompilerFunc func(name string, fn *ir.Function) (Kernel, error)
)

// CompileKernel calls the function.
func (f KernelCompilerFunc) CompileKernel(name string, fn *ir.Function) (Kernel, error) {
	return f(name, fn)
}

type kernelBuilder struct {
	mut      sync.Mutex
	kernel   Kernel
	encoding string
}

// Registry caches compiled kernels given the fingerprint of primitive functions.
// Kernels are compiled at most once. A registry can be used concurrently.
type Registry struct {
	kernels      gxsync.Map[string, *kernelBuilder]
	compilations atomic.Int64
}

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var processRegistry = NewRegistry()

// ProcessRegistry returns the registry shared by the whole process.
func ProcessRegistry() *Registry {
	return processRegistry
}

func (r *Registry) builder(name string) *kernelBuilder {
	if kb, ok := r.kernels.Load(name); ok {
		return kb
	}
	kb, _ := r.kernels.LoadOrStore(name, &kernelBuilder{})
	return kb
}

// LoadOrCompile returns the kernel registered for a fingerprint.
// If no kernel has been registered, the kernel is compiled by calling compile
// with the kernel name and then registered. Concurrent calls for the same fingerprint
// wait for the first compilation to complete.
// A failed compilation does not register anything.
func (r *Registry) LoadOrCompile(fp ir.Fingerprint, compile func(name string) (Kernel, error)) (Kernel, error) {
	name := fp.KernelName()
	kb := r.builder(name)
	kb.mut.Lock()
	defer kb.mut.Unlock()

	if kb.kernel != nil {
		if kb.encoding != fp.Encoding {
			return nil, errors.Errorf("fingerprint collision for kernel %s:\n%s\n%s", name, kb.encoding, fp.Encoding)
		}
		return kb.kernel, nil
	}
	kernel, err := compile(name)
	if err != nil {
		return nil, &KernelCompilationError{Kernel: name, Err: err}
	}
	if kernel == nil {
		return nil, &KernelCompilationError{Kernel: name, Err: errors.Errorf("backend returned no kernel")}
	}
	kb.kernel, kb.encoding = kernel, fp.Encoding
	r.compilations.Add(1)
	return kernel, nil
}

// Lookup returns a compiled kernel given its name.
func (r *Registry) Lookup(name string) (Kernel, bool) {
	kb, ok := r.kernels.Load(name)
	if !ok {
		return nil, false
	}
	kb.mut.Lock()
	defer kb.mut.Unlock()
	return kb.kernel, kb.kernel != nil
}

// Names returns the sorted names of all the kernels compiled successfully.
func (r *Registry) Names() []string {
	var names []string
	for name, kb := range r.kernels.Iter() {
		kb.mut.Lock()
		if kb.kernel != nil {
			names = append(names, name)
		}
		kb.mut.Unlock()
	}
	slices.Sort(names)
	return names
}

// Compilations returns the number of successful kernel compilations.
func (r *Registry) Compilations() int {
	return int(r.compilations.Load())
}
