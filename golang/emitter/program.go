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

// Package emitter emits native artifacts for lowered programs and links them.
package emitter

import (
	"slices"

	"github.com/gx-org/aot/base/ordered"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
	"github.com/gx-org/aot/build/module"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// Program is a lowered program ready to be emitted.
type Program struct {
	// Name of the entry point symbol.
	Name string
	// Entry function called by the host.
	Entry *lowered.Function
	// Globals called, directly or not, by the entry function.
	Globals []aot.ResolvedGlobal
	// Registry storing the kernels called by the program.
	Registry *aot.Registry

	// Package is the name of the emitted Go package.
	Package string
	// ModulePath is the path of the emitted Go module.
	ModulePath string
	// Runtime is the local module providing the runtime.
	// If nil, the emitted module requires the runtime without replacing it.
	Runtime *module.Module
}

// collector walks a program and collects constants, kernels, and data types
// in order of first appearance.
type collector struct {
	params    *ordered.Map[*ir.Constant, int]
	kernels   map[string]int
	dataTypes []*ir.DataType
}

func newCollector() *collector {
	return &collector{
		params:   ordered.NewMap[*ir.Constant, int](),
		kernels:  make(map[string]int),
	}
}

func (c *collector) dataType(dt *ir.DataType) {
	if !slices.Contains(c.dataTypes, dt) {
		c.dataTypes = append(c.dataTypes, dt)
	}
}

func (c *collector) pattern(p ir.Pattern) {
	switch pT := p.(type) {
	case *ir.PatternConstructor:
		c.dataType(pT.Constructor.Data)
		for _, f := range pT.Fields {
			c.pattern(f)
		}
	case *ir.PatternTuple:
		for _, f := range pT.Fields {
			c.pattern(f)
		}
	}
}

func (c *collector) nodes(nodes []lowered.Node) error {
	for _, n := range nodes {
		if err := c.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) node(node lowered.Node) error {
	switch nodeT := node.(type) {
	case *lowered.Var, *lowered.Global:
	case *lowered.Constant:
		if _, ok := c.params.Load(nodeT.Src); !ok {
			c.params.Store(nodeT.Src, c.params.Size())
		}
	case *lowered.PackedCall:
		if arity, ok := c.kernels[nodeT.Kernel]; ok && arity != nodeT.Arity {
			return errors.Errorf("kernel %s called with arity %d and %d", nodeT.Kernel, arity, nodeT.Arity)
		}
		c.kernels[nodeT.Kernel] = nodeT.Arity
		return c.nodes(nodeT.Args)
	case *lowered.Invoke:
		if err := c.node(nodeT.Callee); err != nil {
			return err
		}
		return c.nodes(nodeT.Args)
	case *lowered.Decl:
		for _, binding := range nodeT.Bindings {
			if err := c.node(binding.Value); err != nil {
				return err
			}
		}
		return c.node(nodeT.Body)
	case *lowered.If:
		return c.nodes([]lowered.Node{nodeT.Cond, nodeT.Then, nodeT.Else})
	case *lowered.Tuple:
		return c.nodes(nodeT.Fields)
	case *lowered.TupleGetItem:
		return c.node(nodeT.Tuple)
	case *lowered.Match:
		if err := c.node(nodeT.Data); err != nil {
			return err
		}
		for _, clause := range nodeT.Clauses {
			c.pattern(clause.Pattern)
			if err := c.node(clause.Body); err != nil {
				return err
			}
		}
	case *lowered.Function:
		return c.node(nodeT.Body)
	case *lowered.ConstructorApp:
		c.dataType(nodeT.Constructor.Data)
		return c.nodes(nodeT.Args)
	default:
		return errors.Errorf("cannot emit node %T", node)
	}
	return nil
}

func (c *collector) program(prog *Program) error {
	if prog.Entry == nil {
		return errors.Errorf("program %s has no entry function", prog.Name)
	}
	if err := c.node(prog.Entry); err != nil {
		return err
	}
	for _, g := range prog.Globals {
		if g.Name == prog.Name {
			return errors.Errorf("entry %s has the same name as a global", prog.Name)
		}
		if err := c.node(g.Function); err != nil {
			return errors.Wrapf(err, "global %s", g.Name)
		}
	}
	return nil
}

// paramList returns the captured parameters in order of first appearance.
func (c *collector) paramList() []*ir.Constant {
	return slices.Collect(c.params.Keys())
}

func (c *collector) sortedKernels() []string {
	names := maps.Keys(c.kernels)
	slices.Sort(names)
	return names
}
