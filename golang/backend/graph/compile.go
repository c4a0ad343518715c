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

package graph

import (
	"fmt"

	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
)

// value is a node or a tuple of values while building the graph.
type value struct {
	node   execNode
	fields []value
}

func (v value) isTuple() bool {
	return v.node == nil
}

type scope struct {
	g    *Graph
	vars map[*ir.Var]value
}

// Compile a primitive function into a kernel.
// Parameters of the function are either tensors or tuples of tensors:
// tuples are flattened into consecutive kernel inputs.
func Compile(plat *platform.Platform, name string, fn *ir.Function) (*Kernel, error) {
	g := New(plat, name)
	s := &scope{g: g, vars: make(map[*ir.Var]value)}
	var inputs []*argument
	for _, param := range fn.Params {
		val, err := s.param(param.Name, param.Typ, &inputs)
		if err != nil {
			return nil, errors.Wrapf(err, "kernel %s", name)
		}
		s.vars[param] = val
	}
	out, err := s.build(fn.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "kernel %s", name)
	}
	if out.isTuple() {
		return nil, errors.Errorf("kernel %s: returning a tuple is not supported", name)
	}
	return g.compile(inputs, out.node), nil
}

func (s *scope) param(name string, typ ir.Type, inputs *[]*argument) (value, error) {
	switch typT := typ.(type) {
	case *ir.TensorType:
		sh := typT.Shape
		node, err := s.g.Argument(name, &sh)
		if err != nil {
			return value{}, err
		}
		*inputs = append(*inputs, node.(*argument))
		return value{node: node}, nil
	case *ir.TupleType:
		fields := make([]value, len(typT.Fields))
		for i, field := range typT.Fields {
			if !ir.IsTensor(field) {
				return value{}, errors.Errorf("parameter %s: field %d of type %s is not a tensor", name, i, field.String())
			}
			var err error
			if fields[i], err = s.param(fmt.Sprintf("%s.%d", name, i), field, inputs); err != nil {
				return value{}, err
			}
		}
		return value{fields: fields}, nil
	}
	return value{}, errors.Errorf("parameter %s: type %v not supported", name, typ)
}

func (s *scope) buildNode(expr ir.Expr) (execNode, error) {
	val, err := s.build(expr)
	if err != nil {
		return nil, err
	}
	if val.isTuple() {
		return nil, errors.Errorf("%s is a tuple: expected a tensor", ir.String(expr))
	}
	return val.node, nil
}

func (s *scope) build(expr ir.Expr) (value, error) {
	switch exprT := expr.(type) {
	case *ir.Var:
		val, ok := s.vars[exprT]
		if !ok {
			return value{}, errors.Errorf("undefined variable %s", exprT.Name)
		}
		return val, nil
	case *ir.Constant:
		array, err := kernels.NewArray(exprT.Values, exprT.Typ.Dims())
		if err != nil {
			return value{}, err
		}
		node, err := s.g.NewConstant(array)
		if err != nil {
			return value{}, err
		}
		return value{node: node}, nil
	case *ir.Let:
		val, err := s.build(exprT.Value)
		if err != nil {
			return value{}, err
		}
		if !val.isTuple() {
			val.node = s.g.newShared(val.node)
		}
		s.vars[exprT.Var] = val
		return s.build(exprT.Body)
	case *ir.Tuple:
		fields := make([]value, len(exprT.Fields))
		for i, field := range exprT.Fields {
			var err error
			if fields[i], err = s.build(field); err != nil {
				return value{}, err
			}
		}
		return value{fields: fields}, nil
	case *ir.TupleGetItem:
		tuple, err := s.build(exprT.Tuple)
		if err != nil {
			return value{}, err
		}
		if !tuple.isTuple() || exprT.Index < 0 || exprT.Index >= len(tuple.fields) {
			return value{}, errors.Errorf("invalid projection %s", ir.String(exprT))
		}
		return tuple.fields[exprT.Index], nil
	case *ir.Call:
		return s.buildCall(exprT)
	}
	return value{}, errors.Errorf("%T not supported in a primitive function", expr)
}

func (s *scope) buildCall(call *ir.Call) (value, error) {
	switch callee := call.Callee.(type) {
	case *ir.Op:
		builder, ok := builders[callee.Name]
		if !ok {
			return value{}, errors.Errorf("operator %s not supported by the Go native backend", callee.Name)
		}
		args := make([]execNode, len(call.Args))
		for i, arg := range call.Args {
			var err error
			if args[i], err = s.buildNode(arg); err != nil {
				return value{}, err
			}
		}
		node, err := builder(s.g, args)
		if err != nil {
			return value{}, errors.Wrapf(err, "operator %s", callee.Name)
		}
		return value{node: node}, nil
	case *ir.Function:
		// Nested primitive functions are inlined.
		if !callee.IsPrimitive() {
			break
		}
		if len(call.Args) != len(callee.Params) {
			return value{}, errors.Errorf("%s: %d argument(s) for %d parameter(s)", ir.String(call), len(call.Args), len(callee.Params))
		}
		for i, param := range callee.Params {
			val, err := s.build(call.Args[i])
			if err != nil {
				return value{}, err
			}
			s.vars[param] = val
		}
		return s.build(callee.Body)
	}
	return value{}, errors.Errorf("call to %s not supported in a primitive function", ir.String(call.Callee))
}
