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
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
	"github.com/gx-org/aot/golang/aotrt"
	"github.com/pkg/errors"
)

type (
	// frame stores the values of local variables.
	frame struct {
		parent *frame
		vars   map[*ir.Var]values.Value
	}

	evalFn func(r *aotrt.Runtime, f *frame) (values.Value, error)

	closureCompiler struct {
		paramIdx map[*ir.Constant]int
	}
)

func newFrame(parent *frame) *frame {
	return &frame{parent: parent, vars: make(map[*ir.Var]values.Value)}
}

func (f *frame) lookup(v *ir.Var) (values.Value, error) {
	for cur := f; cur != nil; cur = cur.parent {
		if val, ok := cur.vars[v]; ok {
			return val, nil
		}
	}
	return nil, errors.Errorf("undefined variable %s", v.Name)
}

func newClosureCompiler(src *Source) *closureCompiler {
	c := &closureCompiler{paramIdx: make(map[*ir.Constant]int, len(src.Params))}
	for i, p := range src.Params {
		c.paramIdx[p] = i
	}
	return c
}

func (c *closureCompiler) all(nodes []lowered.Node) (func(*aotrt.Runtime, *frame) ([]values.Value, error), error) {
	fns := make([]evalFn, len(nodes))
	for i, n := range nodes {
		var err error
		if fns[i], err = c.compile(n); err != nil {
			return nil, err
		}
	}
	return func(r *aotrt.Runtime, f *frame) ([]values.Value, error) {
		vals := make([]values.Value, len(fns))
		for i, fn := range fns {
			var err error
			if vals[i], err = fn(r, f); err != nil {
				return nil, err
			}
		}
		return vals, nil
	}, nil
}

func bindAll(f *frame, vars []*ir.Var, vals []values.Value) {
	for i, v := range vars {
		f.vars[v] = vals[i]
	}
}

// function compiles a lowered function into a runtime function.
func (c *closureCompiler) function(fn *lowered.Function) (aotrt.Func, error) {
	body, err := c.compile(fn.Body)
	if err != nil {
		return nil, err
	}
	return func(r *aotrt.Runtime, args []values.Value) (values.Value, error) {
		f := newFrame(nil)
		bindAll(f, fn.Params, args)
		return body(r, f)
	}, nil
}

func (c *closureCompiler) compile(node lowered.Node) (evalFn, error) {
	switch nodeT := node.(type) {
	case *lowered.Var:
		return func(_ *aotrt.Runtime, f *frame) (values.Value, error) {
			return f.lookup(nodeT.Src)
		}, nil
	case *lowered.Constant:
		idx, ok := c.paramIdx[nodeT.Src]
		if !ok {
			return nil, errors.Errorf("constant %s not captured", ir.String(nodeT.Src))
		}
		return func(r *aotrt.Runtime, _ *frame) (values.Value, error) {
			return r.Param(idx)
		}, nil
	case *lowered.Global:
		name := nodeT.Src.Name
		return func(r *aotrt.Runtime, _ *frame) (values.Value, error) {
			return r.Global(name)
		}, nil
	case *lowered.PackedCall:
		args, err := c.all(nodeT.Args)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			vals, err := args(r, f)
			if err != nil {
				return nil, err
			}
			return r.PackedCall(nodeT.Kernel, nodeT.Arity, nodeT.Convention, vals...)
		}, nil
	case *lowered.Invoke:
		callee, err := c.compile(nodeT.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.all(nodeT.Args)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			fn, err := callee(r, f)
			if err != nil {
				return nil, err
			}
			vals, err := args(r, f)
			if err != nil {
				return nil, err
			}
			return r.Invoke(fn, vals...)
		}, nil
	case *lowered.Decl:
		bindings := make([]evalFn, len(nodeT.Bindings))
		for i, binding := range nodeT.Bindings {
			var err error
			if bindings[i], err = c.compile(binding.Value); err != nil {
				return nil, err
			}
		}
		body, err := c.compile(nodeT.Body)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			for i, binding := range bindings {
				val, err := binding(r, f)
				if err != nil {
					return nil, err
				}
				f.vars[nodeT.Bindings[i].Var] = val
			}
			return body(r, f)
		}, nil
	case *lowered.If:
		cond, err := c.compile(nodeT.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.compile(nodeT.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.compile(nodeT.Else)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			val, err := cond(r, f)
			if err != nil {
				return nil, err
			}
			return r.If(val,
				func() (values.Value, error) { return then(r, f) },
				func() (values.Value, error) { return els(r, f) },
			)
		}, nil
	case *lowered.Tuple:
		fields, err := c.all(nodeT.Fields)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			vals, err := fields(r, f)
			if err != nil {
				return nil, err
			}
			return r.Tuple(vals...), nil
		}, nil
	case *lowered.TupleGetItem:
		tuple, err := c.compile(nodeT.Tuple)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			val, err := tuple(r, f)
			if err != nil {
				return nil, err
			}
			return r.Field(val, nodeT.Index)
		}, nil
	case *lowered.Match:
		return c.match(nodeT)
	case *lowered.Function:
		body, err := c.compile(nodeT.Body)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			return r.Closure(len(nodeT.Params), func(args []values.Value) (values.Value, error) {
				inner := newFrame(f)
				bindAll(inner, nodeT.Params, args)
				return body(r, inner)
			}), nil
		}, nil
	case *lowered.ConstructorApp:
		args, err := c.all(nodeT.Args)
		if err != nil {
			return nil, err
		}
		return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
			vals, err := args(r, f)
			if err != nil {
				return nil, err
			}
			return r.Construct(nodeT.Constructor.Name, nodeT.Tag, vals...)
		}, nil
	}
	return nil, errors.Errorf("cannot link node %T", node)
}

func (c *closureCompiler) match(match *lowered.Match) (evalFn, error) {
	data, err := c.compile(match.Data)
	if err != nil {
		return nil, err
	}
	type clause struct {
		pattern aotrt.Pattern
		vars    []*ir.Var
		body    evalFn
	}
	clauses := make([]clause, len(match.Clauses))
	for i, cl := range match.Clauses {
		pattern, err := aotrt.FromIR(cl.Pattern)
		if err != nil {
			return nil, err
		}
		body, err := c.compile(cl.Body)
		if err != nil {
			return nil, err
		}
		clauses[i] = clause{pattern: pattern, vars: ir.PatternVars(cl.Pattern), body: body}
	}
	return func(r *aotrt.Runtime, f *frame) (values.Value, error) {
		val, err := data(r, f)
		if err != nil {
			return nil, err
		}
		rtClauses := make([]aotrt.Clause, len(clauses))
		for i, cl := range clauses {
			rtClauses[i] = aotrt.Clause{
				Pattern: cl.pattern,
				Body: func(binds []values.Value) (values.Value, error) {
					inner := newFrame(f)
					bindAll(inner, cl.vars, binds)
					return cl.body(r, inner)
				},
			}
		}
		return r.Match(val, rtClauses...)
	}, nil
}
