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

// Package ir is the typed source intermediate representation (IR) consumed by
// the ahead-of-time compiler.
//
// The tree is produced by an upstream optimizer (type inference, operator
// fusion, administrative normal form) and is read-only thereafter: every node
// carries the type resolved by the type inference pass.
package ir

import "github.com/pkg/errors"

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Expr is an expression of the source IR.
	// The set of expressions is closed: only types from this package implement Expr.
	Expr interface {
		node()
		// Type of the expression, as resolved by type inference.
		Type() Type
	}

	// Var is a local variable: a function parameter, a let-bound variable,
	// or a variable bound by a pattern. Variables are compared by identity.
	Var struct {
		Name string
		Typ  Type
	}

	// Constant is a tensor literal.
	Constant struct {
		Typ *TensorType
		// Values is a Go slice ([]float32, []float64, []int32, []int64 or []bool)
		// storing the elements of the tensor in row-major order.
		Values any
	}

	// GlobalVar is a reference to a global definition of a module.
	GlobalVar struct {
		Name string
		Typ  *FuncType
	}

	// Op is a tensor operator implemented by a backend.
	// Operators are only called from primitive function bodies.
	Op struct {
		Name string
	}

	// Call applies a callee to arguments.
	// The callee is a function, a global, a variable, a constructor, or an operator.
	Call struct {
		Callee Expr
		Args   []Expr
		Typ    Type
	}

	// Let binds a value to a variable in a body.
	Let struct {
		Var   *Var
		Value Expr
		Body  Expr
	}

	// If evaluates one of two branches given a boolean scalar condition.
	If struct {
		Cond Expr
		Then Expr
		Else Expr
		Typ  Type
	}

	// Tuple groups expressions.
	Tuple struct {
		Fields []Expr
		Typ    *TupleType
	}

	// TupleGetItem returns a field of a tuple.
	TupleGetItem struct {
		Tuple Expr
		Index int
		Typ   Type
	}

	// Clause of a match expression.
	Clause struct {
		Pattern Pattern
		Body    Expr
	}

	// Match evaluates the body of the first clause which pattern matches the data.
	Match struct {
		Data    Expr
		Clauses []Clause
		Typ     Type
	}

	// Function is a function literal or the body of a global definition.
	Function struct {
		Params  []*Var
		Body    Expr
		RetType Type

		primitive bool
	}

	// Constructor of an algebraic data type.
	// A constructor is applied with a Call.
	Constructor struct {
		Name   string
		Tag    int
		Inputs []Type
		Data   *DataType
	}
)

var (
	_ Expr = (*Var)(nil)
	_ Expr = (*Constant)(nil)
	_ Expr = (*GlobalVar)(nil)
	_ Expr = (*Op)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Let)(nil)
	_ Expr = (*If)(nil)
	_ Expr = (*Tuple)(nil)
	_ Expr = (*TupleGetItem)(nil)
	_ Expr = (*Match)(nil)
	_ Expr = (*Function)(nil)
	_ Expr = (*Constructor)(nil)
)

// NewVar returns a new local variable.
func NewVar(name string, typ Type) *Var {
	return &Var{Name: name, Typ: typ}
}

func (*Var) node() {}

// Type of the variable.
func (v *Var) Type() Type { return v.Typ }

func (*Constant) node() {}

// Type of the constant.
func (c *Constant) Type() Type { return c.Typ }

func (*GlobalVar) node() {}

// Type of the global.
func (g *GlobalVar) Type() Type { return g.Typ }

func (*Op) node() {}

// Type of an operator is nil: operators are polymorphic.
func (*Op) Type() Type { return nil }

func (*Call) node() {}

// Type of the result of the call.
func (c *Call) Type() Type { return c.Typ }

func (*Let) node() {}

// Type of the let expression, that is the type of its body.
func (l *Let) Type() Type { return l.Body.Type() }

func (*If) node() {}

// Type of the if expression.
func (i *If) Type() Type { return i.Typ }

func (*Tuple) node() {}

// Type of the tuple.
func (t *Tuple) Type() Type { return t.Typ }

func (*TupleGetItem) node() {}

// Type of the field.
func (t *TupleGetItem) Type() Type { return t.Typ }

func (*Match) node() {}

// Type of the match expression.
func (m *Match) Type() Type { return m.Typ }

// NewFunction returns a function which is not a primitive.
func NewFunction(params []*Var, body Expr, ret Type) *Function {
	return &Function{Params: params, Body: body, RetType: ret}
}

// NewPrimitiveFunction returns a function marked as a fusable primitive.
// Primitive functions are compiled into a single kernel by a backend.
func NewPrimitiveFunction(params []*Var, body Expr, ret Type) *Function {
	return &Function{Params: params, Body: body, RetType: ret, primitive: true}
}

func (*Function) node() {}

// IsPrimitive returns true if the function has been marked as a primitive.
func (f *Function) IsPrimitive() bool { return f.primitive }

// FuncType returns the type of the function.
func (f *Function) FuncType() *FuncType {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Typ
	}
	return &FuncType{Params: params, Result: f.RetType}
}

// Type of the function.
func (f *Function) Type() Type { return f.FuncType() }

func (*Constructor) node() {}

// Type of the constructor, seen as a function building a value of its data type.
func (c *Constructor) Type() Type {
	return &FuncType{Params: c.Inputs, Result: c.Data}
}

// NewTuple returns a tuple which type is derived from its fields.
func NewTuple(fields ...Expr) *Tuple {
	types := make([]Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type()
	}
	return &Tuple{Fields: fields, Typ: &TupleType{Fields: types}}
}

// NewTupleGetItem returns the projection of a tuple.
func NewTupleGetItem(tuple Expr, index int) (*TupleGetItem, error) {
	tupleType, ok := tuple.Type().(*TupleType)
	if !ok {
		return nil, errors.Errorf("cannot project field %d of %s: not a tuple", index, typeString(tuple.Type()))
	}
	if index < 0 || index >= len(tupleType.Fields) {
		return nil, errors.Errorf("field %d out of range for %s", index, tupleType.String())
	}
	return &TupleGetItem{Tuple: tuple, Index: index, Typ: tupleType.Fields[index]}, nil
}

// LetChain returns the bindings of a sequence of nested let expressions
// and the first expression which is not a let.
func LetChain(let *Let) (bindings []*Let, body Expr) {
	var expr Expr = let
	for {
		l, ok := expr.(*Let)
		if !ok {
			return bindings, expr
		}
		bindings = append(bindings, l)
		expr = l.Body
	}
}

// PrimitiveCallee returns the function called if it is a primitive function.
func PrimitiveCallee(call *Call) (*Function, bool) {
	fn, ok := call.Callee.(*Function)
	if !ok || !fn.IsPrimitive() {
		return nil, false
	}
	return fn, true
}

