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

func (c *Compiler) lowerAll(exprs []ir.Expr) ([]lowered.Node, error) {
	nodes := make([]lowered.Node, len(exprs))
	for i, expr := range exprs {
		var err error
		if nodes[i], err = c.lower(expr); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

func (c *Compiler) lower(expr ir.Expr) (lowered.Node, error) {
	switch exprT := expr.(type) {
	case *ir.Var:
		return &lowered.Var{Src: exprT}, nil
	case *ir.Constant:
		return &lowered.Constant{Src: exprT}, nil
	case *ir.GlobalVar:
		if err := c.resolveGlobal(exprT); err != nil {
			return nil, err
		}
		return &lowered.Global{Src: exprT}, nil
	case *ir.Call:
		return c.lowerCall(exprT)
	case *ir.Let:
		return c.lowerLet(exprT)
	case *ir.If:
		return c.lowerIf(exprT)
	case *ir.Tuple:
		fields, err := c.lowerAll(exprT.Fields)
		if err != nil {
			return nil, err
		}
		return &lowered.Tuple{Fields: fields, Typ: exprT.Typ}, nil
	case *ir.TupleGetItem:
		tuple, err := c.lower(exprT.Tuple)
		if err != nil {
			return nil, err
		}
		return &lowered.TupleGetItem{Tuple: tuple, Index: exprT.Index, Typ: exprT.Typ}, nil
	case *ir.Match:
		return c.lowerMatch(exprT)
	case *ir.Function:
		return c.lowerFunction(exprT)
	case *ir.Op:
		return nil, unsupportedf(expr, "operator used outside of a call in a primitive function")
	case *ir.Constructor:
		return nil, unsupportedf(expr, "constructor needs to be applied")
	case nil:
		return nil, unsupportedf(expr, "nil expression")
	}
	return nil, unsupportedf(expr, "no lowering rule")
}

func (c *Compiler) lowerCall(call *ir.Call) (lowered.Node, error) {
	switch callee := call.Callee.(type) {
	case *ir.Function:
		if callee.IsPrimitive() {
			return c.lowerPrimitive(call, callee, call.Args)
		}
	case *ir.Constructor:
		if len(call.Args) != len(callee.Inputs) {
			return nil, typeShapef(call, "constructor %s expects %d argument(s) but got %d", callee.Name, len(callee.Inputs), len(call.Args))
		}
		args, err := c.lowerAll(call.Args)
		if err != nil {
			return nil, err
		}
		return &lowered.ConstructorApp{Constructor: callee, Tag: callee.Tag, Args: args}, nil
	case *ir.Op:
		return nil, unsupportedf(call, "operator %s can only be called from a primitive function", callee.Name)
	case nil:
		return nil, unsupportedf(call, "call without a callee")
	}
	callee, err := c.lower(call.Callee)
	if err != nil {
		return nil, err
	}
	args, err := c.lowerAll(call.Args)
	if err != nil {
		return nil, err
	}
	return &lowered.Invoke{Callee: callee, Args: args, Typ: call.Typ}, nil
}

// lowerLet flattens a chain of let expressions into a single declaration block.
func (c *Compiler) lowerLet(let *ir.Let) (*lowered.Decl, error) {
	chain, body := ir.LetChain(let)
	decl := &lowered.Decl{Bindings: make([]lowered.Binding, len(chain))}
	for i, l := range chain {
		value, err := c.lower(l.Value)
		if err != nil {
			return nil, err
		}
		decl.Bindings[i] = lowered.Binding{Var: l.Var, Value: value}
	}
	var err error
	if decl.Body, err = c.lower(body); err != nil {
		return nil, err
	}
	return decl, nil
}

func (c *Compiler) lowerIf(expr *ir.If) (*lowered.If, error) {
	cond, err := c.lower(expr.Cond)
	if err != nil {
		return nil, err
	}
	then, err := c.lower(expr.Then)
	if err != nil {
		return nil, err
	}
	els, err := c.lower(expr.Else)
	if err != nil {
		return nil, err
	}
	return &lowered.If{Cond: cond, Then: then, Else: els, Typ: expr.Typ}, nil
}

func (c *Compiler) lowerMatch(match *ir.Match) (*lowered.Match, error) {
	data, err := c.lower(match.Data)
	if err != nil {
		return nil, err
	}
	clauses := make([]lowered.Clause, len(match.Clauses))
	for i, clause := range match.Clauses {
		body, err := c.lower(clause.Body)
		if err != nil {
			return nil, err
		}
		clauses[i] = lowered.Clause{Pattern: clause.Pattern, Body: body}
	}
	return &lowered.Match{Data: data, Clauses: clauses, Typ: match.Typ}, nil
}

func (c *Compiler) lowerFunction(fn *ir.Function) (*lowered.Function, error) {
	var body lowered.Node
	var err error
	if fn.IsPrimitive() {
		// Top-level kernel: the function calls its own kernel with its parameters.
		args := make([]ir.Expr, len(fn.Params))
		for i, p := range fn.Params {
			args[i] = p
		}
		body, err = c.lowerPrimitive(fn, fn, args)
	} else {
		body, err = c.lower(fn.Body)
	}
	if err != nil {
		return nil, err
	}
	return &lowered.Function{Params: fn.Params, Body: body, RetType: fn.RetType}, nil
}
