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
	"fmt"
	"strings"
)

func indent(s string) string {
	var lines []string
	for line := range strings.Lines(s) {
		lines = append(lines, "\t"+line)
	}
	return strings.Join(lines, "")
}

func exprsString(exprs []Expr) string {
	ss := make([]string, len(exprs))
	for i, x := range exprs {
		ss[i] = String(x)
	}
	return strings.Join(ss, ", ")
}

// String returns a human readable representation of an expression.
func String(expr Expr) string {
	switch exprT := expr.(type) {
	case nil:
		return "<nil>"
	case *Var:
		return exprT.Name
	case *Constant:
		return fmt.Sprintf("%s(%v)", exprT.Typ.String(), exprT.Values)
	case *GlobalVar:
		return "@" + exprT.Name
	case *Op:
		return exprT.Name
	case *Constructor:
		return exprT.Name
	case *Call:
		return fmt.Sprintf("%s(%s)", String(exprT.Callee), exprsString(exprT.Args))
	case *Let:
		bindings, body := LetChain(exprT)
		var b strings.Builder
		for _, l := range bindings {
			fmt.Fprintf(&b, "let %s = %s in\n", l.Var.Name, String(l.Value))
		}
		b.WriteString(String(body))
		return b.String()
	case *If:
		return fmt.Sprintf("if %s {\n%s\n} else {\n%s\n}", String(exprT.Cond), indent(String(exprT.Then)), indent(String(exprT.Else)))
	case *Tuple:
		return "(" + exprsString(exprT.Fields) + ")"
	case *TupleGetItem:
		return fmt.Sprintf("%s.%d", String(exprT.Tuple), exprT.Index)
	case *Match:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s {\n", String(exprT.Data))
		for _, clause := range exprT.Clauses {
			fmt.Fprintf(&b, "\t%s => %s\n", PatternString(clause.Pattern), String(clause.Body))
		}
		b.WriteString("}")
		return b.String()
	case *Function:
		params := make([]string, len(exprT.Params))
		for i, p := range exprT.Params {
			params[i] = p.Name + " " + typeString(p.Typ)
		}
		kw := "fn"
		if exprT.primitive {
			kw = "primitive fn"
		}
		return fmt.Sprintf("%s(%s) %s {\n%s\n}", kw, strings.Join(params, ", "), typeString(exprT.RetType), indent(String(exprT.Body)))
	}
	return fmt.Sprintf("<%T>", expr)
}

// PatternString returns a human readable representation of a pattern.
func PatternString(p Pattern) string {
	switch pT := p.(type) {
	case *PatternWildcard:
		return "_"
	case *PatternVar:
		return pT.Var.Name
	case *PatternConstructor:
		if len(pT.Fields) == 0 {
			return pT.Constructor.Name
		}
		return pT.Constructor.Name + "(" + patternsString(pT.Fields) + ")"
	case *PatternTuple:
		return "(" + patternsString(pT.Fields) + ")"
	}
	return fmt.Sprintf("<%T>", p)
}

func patternsString(ps []Pattern) string {
	ss := make([]string, len(ps))
	for i, p := range ps {
		ss[i] = PatternString(p)
	}
	return strings.Join(ss, ", ")
}
