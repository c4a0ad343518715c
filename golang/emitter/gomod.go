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

package emitter

import (
	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

const (
	runtimeModule  = "github.com/gx-org/aot"
	defaultGo      = "1.24"
	defaultVersion = "v0.0.0"
)

// emitGoMod returns the go.mod file of the emitted module.
// The module requires the runtime and, if the runtime is available locally,
// replaces it with its local directory.
func emitGoMod(prog *Program) ([]byte, error) {
	path := prog.ModulePath
	if path == "" {
		path = "aot.local/" + prog.Name
	}
	if err := module.CheckImportPath(path); err != nil {
		return nil, errors.Errorf("invalid module path %q: %v", path, err)
	}
	f := &modfile.File{}
	if err := f.AddModuleStmt(path); err != nil {
		return nil, err
	}
	goVersion, rtVersion := defaultGo, defaultVersion
	if prog.Runtime != nil && prog.Runtime.GoVersion() != "" {
		goVersion = prog.Runtime.GoVersion()
	}
	if err := f.AddGoStmt(goVersion); err != nil {
		return nil, err
	}
	if err := f.AddRequire(runtimeModule, rtVersion); err != nil {
		return nil, err
	}
	if prog.Runtime != nil {
		if err := f.AddReplace(runtimeModule, "", prog.Runtime.Root(), ""); err != nil {
			return nil, err
		}
	}
	return modfile.Format(f.Syntax), nil
}
