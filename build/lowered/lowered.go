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

// Package lowered defines the imperative intermediate representation
// produced by the ahead-of-time compiler and consumed by native emitters.
//
// Lowered nodes are immutable once built.
package lowered

import "github.com/gx-org/aot/build/ir"

// Convention is the calling convention of a compiled kernel.
type Convention int

const (
	// Flat passes every tensor argument as a separate kernel parameter.
	Flat Convention = iota
	// Spread passes the fields of a single tuple argument as kernel parameters.
	Spread
)

func (c Convention) String() string {
	switch c {
	case Flat:
		return "flat"
	case Spread:
		return "spread"
	}
	return "unknown"
}

type (
	// Node of the lowered IR.
	Node interface {
		node()
		Type() ir.Type
	}

	// Var is a local variable.
	Var struct {
		Src *ir.Var
	}

	// Constant tensor.
	Constant struct {
		Src *ir.Constant
	}

	// Global is a reference to a global function.
	// The function has been lowered before (or while) the reference is built.
	Global struct {
		Src *ir.GlobalVar
	}

	// PackedCall calls a compiled kernel.
	PackedCall struct {
		// Kernel is the name of the kernel in the kernel registry.
		Kernel string
		// Arity is the number of parameters of the kernel,
		// including the output slot appended to the inputs.
		Arity int
		Args  []Node
		Typ   ir.Type
		// Convention tells if the first argument is spread into the kernel parameters.
		Convention Convention
	}

	// Invoke calls a lowered function, a global, or a closure.
	Invoke struct {
		Callee Node
		Args   []Node
		Typ    ir.Type
	}

	// Binding of a value to a variable in a declaration block.
	Binding struct {
		Var   *ir.Var
		Value Node
	}

	// Decl is a block of sequential bindings followed by an expression.
	Decl struct {
		Bindings []Binding
		Body     Node
	}

	// If evaluates one of two branches.
	If struct {
		Cond Node
		Then Node
		Else Node
		Typ  ir.Type
	}

	// Tuple groups values.
	Tuple struct {
		Fields []Node
		Typ    ir.Type
	}

	// TupleGetItem returns a field of a tuple.
	TupleGetItem struct {
		Tuple Node
		Index int
		Typ   ir.Type
	}

	// Clause of a match. Patterns are the patterns of the source IR.
	Clause struct {
		Pattern ir.Pattern
		Body    Node
	}

	// Match evaluates the first clause which pattern matches the data.
	Match struct {
		Data    Node
		Clauses []Clause
		Typ     ir.Type
	}

	// Function is a lowered function.
	Function struct {
		Params  []*ir.Var
		Body    Node
		RetType ir.Type
	}

	// ConstructorApp builds a value of an algebraic data type.
	ConstructorApp struct {
		Constructor *ir.Constructor
		Tag         int
		Args        []Node
	}
)

var (
	_ Node = (*Var)(nil)
	_ Node = (*Constant)(nil)
	_ Node = (*Global)(nil)
	_ Node = (*PackedCall)(nil)
	_ Node = (*Invoke)(nil)
	_ Node = (*Decl)(nil)
	_ Node = (*If)(nil)
	_ Node = (*Tuple)(nil)
	_ Node = (*TupleGetItem)(nil)
	_ Node = (*Match)(nil)
	_ Node = (*Function)(nil)
	_ Node = (*ConstructorApp)(nil)
)

func (*Var) node() {}

// Type of the variable.
func (n *Var) Type() ir.Type { return n.Src.Typ }

func (*Constant) node() {}

// Type of the constant.
func (n *Constant) Type() ir.Type { return n.Src.Typ }

func (*Global) node() {}

// Type of the global.
func (n *Global) Type() ir.Type { return n.Src.Typ }

func (*PackedCall) node() {}

// Type returned by the kernel.
func (n *PackedCall) Type() ir.Type { return n.Typ }

func (*Invoke) node() {}

// Type returned by the callee.
func (n *Invoke) Type() ir.Type { return n.Typ }

func (*Decl) node() {}

// Type of the trailing expression.
func (n *Decl) Type() ir.Type { return n.Body.Type() }

func (*If) node() {}

// Type of the branches.
func (n *If) Type() ir.Type { return n.Typ }

func (*Tuple) node() {}

// Type of the tuple.
func (n *Tuple) Type() ir.Type { return n.Typ }

func (*TupleGetItem) node() {}

// Type of the field.
func (n *TupleGetItem) Type() ir.Type { return n.Typ }

func (*Match) node() {}

// Type of the clauses.
func (n *Match) Type() ir.Type { return n.Typ }

func (*Function) node() {}

// Type of the function.
func (n *Function) Type() ir.Type {
	params := make([]ir.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Typ
	}
	return ir.Func(n.RetType, params...)
}

func (*ConstructorApp) node() {}

// Type of the data built by the constructor.
func (n *ConstructorApp) Type() ir.Type { return n.Constructor.Data }
