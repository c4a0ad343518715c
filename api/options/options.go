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

// Package options specifies options for compiling programs.
package options

import (
	"github.com/gx-org/aot/api/config"
	"github.com/gx-org/aot/api/trace"
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/module"
	"github.com/gx-org/aot/golang/backend"
	"github.com/gx-org/aot/golang/emitter"
)

type (
	// Options of a compilation.
	Options struct {
		// Config of the compiler.
		Config *config.Config
		// Backend compiling kernels and executing them.
		Backend *backend.Backend
		// Registry caching compiled kernels.
		Registry *aot.Registry
		// Log of the compiler.
		Log *logging.Logger
		// Linker loading the emitted program.
		Linker emitter.Linker
		// Trace is called after each call to the entry point.
		Trace trace.Callback

		// Package is the name of the emitted Go package.
		Package string
		// ModulePath is the path of the emitted Go module.
		ModulePath string
		// Runtime is the local module providing the runtime to the emitted module.
		Runtime *module.Module
	}

	// Option sets a compilation option.
	Option func(*Options)
)

// WithConfig sets the configuration of the compiler.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) { o.Config = cfg }
}

// WithBackend sets the backend compiling and executing kernels.
func WithBackend(bck *backend.Backend) Option {
	return func(o *Options) { o.Backend = bck }
}

// WithRegistry sets the kernel registry.
// It takes precedence over the share_registry configuration.
func WithRegistry(r *aot.Registry) Option {
	return func(o *Options) { o.Registry = r }
}

// WithLogger sets the logger of the compiler.
func WithLogger(log *logging.Logger) Option {
	return func(o *Options) { o.Log = log }
}

// WithLinker sets the linker.
func WithLinker(l emitter.Linker) Option {
	return func(o *Options) { o.Linker = l }
}

// WithTrace sets a callback observing calls to the entry point.
func WithTrace(tr trace.Callback) Option {
	return func(o *Options) { o.Trace = tr }
}

// WithGoModule sets the package name and the module path of the emitted source.
func WithGoModule(pkg, modulePath string, runtime *module.Module) Option {
	return func(o *Options) {
		o.Package = pkg
		o.ModulePath = modulePath
		o.Runtime = runtime
	}
}

// New returns options with defaults filled in.
func New(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Backend == nil {
		o.Backend = backend.New()
	}
	if o.Log == nil {
		o.Log = o.Config.Logger()
	}
	if o.Registry == nil {
		if o.Config.ShareRegistry {
			o.Registry = aot.ProcessRegistry()
		} else {
			o.Registry = aot.NewRegistry()
		}
	}
	if o.Linker == nil {
		dev := o.Backend.Platform().Device()
		if len(o.Config.Build.Command) > 0 || o.Config.Build.WorkDir != "" {
			o.Linker = o.Config.Toolchain(dev, o.Log)
		} else {
			o.Linker = &emitter.InProcess{Device: dev}
		}
	}
	return o
}
