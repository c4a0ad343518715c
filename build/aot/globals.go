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
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
)

type globalState int

const (
	unvisited globalState = iota
	resolving
	resolved
)

type globalSlot struct {
	state globalState
	fn    *lowered.Function
}

// ResolvedGlobal is a global function of a module after lowering.
type ResolvedGlobal struct {
	ID       ir.GlobalID
	Name     string
	Function *lowered.Function
}

func (c *Compiler) slot(id ir.GlobalID) *globalSlot {
	// Definitions may have been added to the module after the compiler was created.
	for int(id) > len(c.globals) {
		c.globals = append(c.globals, globalSlot{})
	}
	return &c.globals[id-1]
}

// resolveGlobal lowers the function of a global if it has not been lowered yet.
// A reference to a global being resolved is a recursive reference and
// returns immediately.
func (c *Compiler) resolveGlobal(gv *ir.GlobalVar) error {
	id, ok := c.mod.Lookup(gv.Name)
	if !ok {
		return unsupportedf(gv, "global not defined in module %s", c.mod.Name())
	}
	def := c.mod.Definition(id)
	if def.Function == nil {
		return unsupportedf(gv, "global declared but never defined")
	}
	slot := c.slot(id)
	switch slot.state {
	case resolving:
		c.log.Debugf("recursive reference to %s", gv.Name)
		return nil
	case resolved:
		return nil
	}
	slot.state = resolving
	c.log.Debugf("resolving global %s", gv.Name)
	start := len(c.order)
	fn, err := c.lowerFunction(def.Function)
	// The slice of slots may have grown during the recursion.
	slot = c.slot(id)
	if err != nil {
		c.rollback(start)
		slot.state = unvisited
		return err
	}
	slot.state, slot.fn = resolved, fn
	c.order = append(c.order, id)
	return nil
}

// rollback forgets the globals resolved since order had the given length.
// They may refer to a global whose resolution failed.
func (c *Compiler) rollback(start int) {
	for _, id := range c.order[start:] {
		c.globals[id-1] = globalSlot{}
	}
	c.order = c.order[:start]
}

// Global returns the lowered function of a resolved global.
func (c *Compiler) Global(name string) (*lowered.Function, bool) {
	id, ok := c.mod.Lookup(name)
	if !ok || int(id) > len(c.globals) {
		return nil, false
	}
	slot := c.globals[id-1]
	if slot.state != resolved {
		return nil, false
	}
	return slot.fn, true
}

// Globals returns all the resolved globals in the order in which their
// resolution completed: a global comes after the globals it depends on,
// except for recursive references.
func (c *Compiler) Globals() []ResolvedGlobal {
	globals := make([]ResolvedGlobal, len(c.order))
	for i, id := range c.order {
		globals[i] = ResolvedGlobal{
			ID:       id,
			Name:     c.mod.Definition(id).Name,
			Function: c.globals[id-1].fn,
		}
	}
	return globals
}
