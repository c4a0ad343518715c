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

package ir

import (
	"github.com/pkg/errors"
)

type (
	// GlobalID is a handle on a global definition of a module.
	// The zero value is not a valid handle.
	GlobalID int

	// Definition of a global function.
	Definition struct {
		ID       GlobalID
		Name     string
		Function *Function
	}

	// Module is a set of global definitions.
	Module struct {
		name  string
		defs  []*Definition
		names map[string]GlobalID
	}
)

// NewModule returns a new empty module.
func NewModule(name string) *Module {
	return &Module{name: name, names: make(map[string]GlobalID)}
}

// Name of the module.
func (m *Module) Name() string {
	return m.name
}

// Add a global definition to the module.
// It returns a reference to the global that can be used in expressions,
// including in the body of the function itself.
func (m *Module) Add(name string, fn *Function) (*GlobalVar, error) {
	gv, err := m.Declare(name, fn.FuncType())
	if err != nil {
		return nil, err
	}
	if err := m.Define(gv, fn); err != nil {
		return nil, err
	}
	return gv, nil
}

// Declare a global without defining its body.
// Declarations let recursive definitions refer to themselves.
func (m *Module) Declare(name string, typ *FuncType) (*GlobalVar, error) {
	if _, ok := m.names[name]; ok {
		return nil, errors.Errorf("global %s already declared in module %s", name, m.name)
	}
	id := GlobalID(len(m.defs) + 1)
	m.defs = append(m.defs, &Definition{ID: id, Name: name})
	m.names[name] = id
	return &GlobalVar{Name: name, Typ: typ}, nil
}

// Define the body of a declared global.
func (m *Module) Define(gv *GlobalVar, fn *Function) error {
	def := m.Definition(m.names[gv.Name])
	if def == nil {
		return errors.Errorf("global %s has not been declared in module %s", gv.Name, m.name)
	}
	if def.Function != nil {
		return errors.Errorf("global %s already defined in module %s", gv.Name, m.name)
	}
	if !TypeEqual(gv.Typ, fn.FuncType()) {
		return errors.Errorf("cannot define global %s of type %s with a function of type %s", gv.Name, typeString(gv.Typ), fn.FuncType().String())
	}
	def.Function = fn
	return nil
}

// Lookup returns the handle of a global given its name.
func (m *Module) Lookup(name string) (GlobalID, bool) {
	id, ok := m.names[name]
	return id, ok
}

// Definition returns a global definition given its handle.
// Returns nil if the handle is invalid.
func (m *Module) Definition(id GlobalID) *Definition {
	if id <= 0 || int(id) > len(m.defs) {
		return nil
	}
	return m.defs[id-1]
}

// Definitions returns all the definitions in declaration order.
func (m *Module) Definitions() []*Definition {
	return m.defs
}

// Global returns a reference to a global given its name.
func (m *Module) Global(name string) (*GlobalVar, bool) {
	def := m.Definition(m.names[name])
	if def == nil || def.Function == nil {
		return nil, false
	}
	return &GlobalVar{Name: def.Name, Typ: def.Function.FuncType()}, true
}
