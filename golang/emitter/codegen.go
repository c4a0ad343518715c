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
	"fmt"
	"strconv"
	"strings"

	"github.com/gx-org/aot/base/uname"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/lowered"
	"github.com/pkg/errors"
)

// funcWriter writes the Go source of a top-level function.
type funcWriter struct {
	col   *collector
	names *uname.Unique
	vars  map[*ir.Var]string
	b     strings.Builder

	usesLowered bool
}

func newFuncWriter(col *collector) *funcWriter {
	names := uname.New()
	names.Register("r", "args", "binds", "err", "values", "aotrt", "lowered")
	return &funcWriter{col: col, names: names, vars: make(map[*ir.Var]string)}
}

func (w *funcWriter) printf(format string, a ...any) {
	fmt.Fprintf(&w.b, format, a...)
	w.b.WriteString("\n")
}

// assign writes a statement assigning a value returned with an error to a new local.
func (w *funcWriter) assign(format string, a ...any) string {
	name := w.names.Name("v")
	w.printf("%s, err := %s", name, fmt.Sprintf(format, a...))
	w.printf("if err != nil {\nreturn nil, err\n}")
	return name
}

func (w *funcWriter) bind(v *ir.Var, value string) {
	name := w.names.Name(v.Name)
	w.vars[v] = name
	w.printf("%s := %s", name, value)
	w.printf("_ = %s", name)
}

func (w *funcWriter) params(params []*ir.Var, src string) {
	for i, p := range params {
		w.bind(p, fmt.Sprintf("%s[%d]", src, i))
	}
}

// body writes statements computing a node and returns its value.
func (w *funcWriter) body(node lowered.Node) error {
	value, err := w.node(node)
	if err != nil {
		return err
	}
	w.printf("return %s, nil", value)
	return nil
}

func (w *funcWriter) closure(signature string, f func() error) (string, error) {
	outer := w.b.String()
	w.b.Reset()
	if err := f(); err != nil {
		return "", err
	}
	inner := w.b.String()
	w.b.Reset()
	w.b.WriteString(outer)
	return fmt.Sprintf("func(%s) (values.Value, error) {\n%s}", signature, inner), nil
}

func (w *funcWriter) nodes(nodes []lowered.Node) (string, error) {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		var err error
		if names[i], err = w.node(n); err != nil {
			return "", err
		}
	}
	return strings.Join(names, ", "), nil
}

func withArgs(prefix, args string) string {
	if args == "" {
		return prefix
	}
	return prefix + ", " + args
}

func patternSource(p ir.Pattern) (string, error) {
	var fields []ir.Pattern
	var call string
	switch pT := p.(type) {
	case *ir.PatternWildcard:
		return "aotrt.Wildcard()", nil
	case *ir.PatternVar:
		return "aotrt.Bind()", nil
	case *ir.PatternConstructor:
		call = "aotrt.Ctor(" + strconv.Itoa(pT.Constructor.Tag)
		fields = pT.Fields
	case *ir.PatternTuple:
		call = "aotrt.TupleOf("
		fields = pT.Fields
	default:
		return "", errors.Errorf("pattern %T not supported", p)
	}
	srcs := make([]string, len(fields))
	for i, f := range fields {
		var err error
		if srcs[i], err = patternSource(f); err != nil {
			return "", err
		}
	}
	if strings.HasSuffix(call, "(") {
		return call + strings.Join(srcs, ", ") + ")", nil
	}
	return withArgs(call, strings.Join(srcs, ", ")) + ")", nil
}

func (w *funcWriter) node(node lowered.Node) (string, error) {
	switch nodeT := node.(type) {
	case *lowered.Var:
		name, ok := w.vars[nodeT.Src]
		if !ok {
			return "", errors.Errorf("undefined variable %s", nodeT.Src.Name)
		}
		return name, nil
	case *lowered.Constant:
		idx, ok := w.col.params.Load(nodeT.Src)
		if !ok {
			return "", errors.Errorf("constant %s not captured", ir.String(nodeT.Src))
		}
		return w.assign("r.Param(%d)", idx), nil
	case *lowered.Global:
		return w.assign("r.Global(%q)", nodeT.Src.Name), nil
	case *lowered.PackedCall:
		args, err := w.nodes(nodeT.Args)
		if err != nil {
			return "", err
		}
		conv := "lowered.Flat"
		if nodeT.Convention == lowered.Spread {
			conv = "lowered.Spread"
		}
		w.usesLowered = true
		return w.assign("r.PackedCall(%s)", withArgs(fmt.Sprintf("%q, %d, %s", nodeT.Kernel, nodeT.Arity, conv), args)), nil
	case *lowered.Invoke:
		callee, err := w.node(nodeT.Callee)
		if err != nil {
			return "", err
		}
		args, err := w.nodes(nodeT.Args)
		if err != nil {
			return "", err
		}
		return w.assign("r.Invoke(%s)", withArgs(callee, args)), nil
	case *lowered.Decl:
		for _, binding := range nodeT.Bindings {
			value, err := w.node(binding.Value)
			if err != nil {
				return "", err
			}
			w.bind(binding.Var, value)
		}
		return w.node(nodeT.Body)
	case *lowered.If:
		cond, err := w.node(nodeT.Cond)
		if err != nil {
			return "", err
		}
		then, err := w.closure("", func() error { return w.body(nodeT.Then) })
		if err != nil {
			return "", err
		}
		els, err := w.closure("", func() error { return w.body(nodeT.Else) })
		if err != nil {
			return "", err
		}
		return w.assign("r.If(%s, %s, %s)", cond, then, els), nil
	case *lowered.Tuple:
		fields, err := w.nodes(nodeT.Fields)
		if err != nil {
			return "", err
		}
		name := w.names.Name("v")
		w.printf("%s := r.Tuple(%s)", name, fields)
		return name, nil
	case *lowered.TupleGetItem:
		tuple, err := w.node(nodeT.Tuple)
		if err != nil {
			return "", err
		}
		return w.assign("r.Field(%s, %d)", tuple, nodeT.Index), nil
	case *lowered.Match:
		data, err := w.node(nodeT.Data)
		if err != nil {
			return "", err
		}
		clauses := make([]string, len(nodeT.Clauses))
		for i, clause := range nodeT.Clauses {
			pattern, err := patternSource(clause.Pattern)
			if err != nil {
				return "", err
			}
			body, err := w.closure("binds []values.Value", func() error {
				w.params(ir.PatternVars(clause.Pattern), "binds")
				return w.body(clause.Body)
			})
			if err != nil {
				return "", err
			}
			clauses[i] = fmt.Sprintf("aotrt.Clause{\nPattern: %s,\nBody: %s,\n}", pattern, body)
		}
		return w.assign("r.Match(%s)", withArgs(data, strings.Join(clauses, ",\n"))), nil
	case *lowered.Function:
		fn, err := w.closure("args []values.Value", func() error {
			w.params(nodeT.Params, "args")
			return w.body(nodeT.Body)
		})
		if err != nil {
			return "", err
		}
		name := w.names.Name("v")
		w.printf("%s := r.Closure(%d, %s)", name, len(nodeT.Params), fn)
		return name, nil
	case *lowered.ConstructorApp:
		args, err := w.nodes(nodeT.Args)
		if err != nil {
			return "", err
		}
		return w.assign("r.Construct(%s)", withArgs(fmt.Sprintf("%q, %d", nodeT.Constructor.Name, nodeT.Tag), args)), nil
	}
	return "", errors.Errorf("cannot emit node %T", node)
}

// function returns the source of a top-level function.
func (w *funcWriter) function(goName string, fn *lowered.Function) (string, error) {
	w.params(fn.Params, "args")
	if err := w.body(fn.Body); err != nil {
		return "", err
	}
	return fmt.Sprintf("func %s(r *aotrt.Runtime, args []values.Value) (values.Value, error) {\n%s}\n", goName, w.b.String()), nil
}
