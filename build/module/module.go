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

// Package module locates the Go module providing the runtime of compiled programs.
package module

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
)

func findModuleRoot(dir string) string {
	dir = filepath.Clean(dir)
	if dir == "" {
		return ""
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}
		d := filepath.Dir(dir)
		if d == dir {
			break
		}
		dir = d
	}
	return ""
}

// Module is a Go module on the local filesystem.
type Module struct {
	root string
	mod  *modfile.File
}

var (
	current     *Module
	currentErr  error
	currentOnce sync.Once
)

// Current returns the module of the current working directory.
func Current() (*Module, error) {
	currentOnce.Do(func() {
		var wd string
		wd, currentErr = os.Getwd()
		if currentErr != nil {
			return
		}
		current, currentErr = New(wd)
	})
	return current, currentErr
}

// New returns the module containing a directory.
func New(osPath string) (*Module, error) {
	modRoot := findModuleRoot(osPath)
	if modRoot == "" {
		return nil, errors.Errorf("directory %q is not a Go module: cannot find go.mod", osPath)
	}
	absModRoot, err := filepath.Abs(modRoot)
	if err != nil {
		return nil, errors.Errorf("invalid path %q: %v", modRoot, err)
	}
	modPath := filepath.Join(absModRoot, "go.mod")
	modData, err := os.ReadFile(modPath)
	if err != nil {
		return nil, errors.Errorf("cannot read %s: %v", modPath, err)
	}
	mod, err := modfile.Parse(modPath, modData, nil)
	if err != nil {
		return nil, errors.Errorf("cannot parse %s: %v", modPath, err)
	}
	if mod.Module == nil {
		return nil, errors.Errorf("%s does not declare a module path", modPath)
	}
	return &Module{root: absModRoot, mod: mod}, nil
}

// Name of the module as specified in the go.mod file.
func (mod *Module) Name() string {
	return mod.mod.Module.Mod.Path
}

// Root returns the directory of the module on the local filesystem.
func (mod *Module) Root() string {
	return mod.root
}

// GoVersion returns the Go version declared by the module.
// It returns an empty string if the module does not declare a version.
func (mod *Module) GoVersion() string {
	if mod.mod.Go == nil {
		return ""
	}
	return mod.mod.Go.Version
}

// Requires returns the version of a module required by the module.
func (mod *Module) Requires(path string) (string, bool) {
	for _, req := range mod.mod.Require {
		if req.Mod.Path == path {
			return req.Mod.Version, true
		}
	}
	return "", false
}
