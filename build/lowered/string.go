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

package lowered

import (
	"fmt"
	"strings"

	"github.com/gx-org/aot/build/ir"
)

func indent(s string) string {
	var b strings.Builder
	for line := range strings.Lines(s) {
		b.WriteString("\t" + line)
	}
	return b.String()
}

func nodesString(nodes []Node) string {
	ss := make([]string, len(nodes))
	for i, n := range nodes {
		ss[i] = String(n)
	}
	return strings.Join(ss, ", ")
}

// String returns a human readable representation of a lowered node.
func String(node Node) string {
	switch nodeT := node.(type) {
	case nil:
		return "<nil>"
	case *Var:
		return nodeT.Src.Name
	case *Constant:
		return ir.String(nodeT.Src)
	case *Global:
		return "@" + nodeT.Src.Name
	case *PackedCall:
		return fmt.Sprintf("packed[%s/%d,%s](%s)", nodeT.Kernel, nodeT.Arity, nodeT.Convention, nodesString(nodeT.Args))
	case *Invoke:
		return fmt.Sprintf("invoke %s(%s)", String(nodeT.Callee), nodesString(nodeT.Args))
	case *Decl:
		var b strings.Builder
		b.WriteString("{\n")
		for _, binding := range nodeT.Bindings {
			b.WriteString(indent(fmt.Sprintf("%s := %s", binding.Var.Name, String(binding.Value))))
			b.WriteString("\n")
		}
		b.WriteString(indent(String(nodeT.Body)))
		b.WriteString("\n}")
		return b.String()
	case *If:
		return fmt.Sprintf("if %s {\n%s\n} else {\n%s\n}", String(nodeT.Cond), indent(String(nodeT.Then)), indent(String(nodeT.Else)))
	case *Tuple:
		return "(" + nodesString(nodeT.Fields) + ")"
	case *TupleGetItem:
		return fmt.Sprintf("%s.%d", String(nodeT.Tuple), nodeT.Index)
	case *Match:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s {\n", String(nodeT.Data))
		for _, clause := range nodeT.Clauses {
			b.WriteString(indent(fmt.Sprintf("%s => %s", ir.PatternString(clause.Pattern), String(clause.Body))))
			b.WriteString("\n")
		}
		b.WriteString("}")
		return b.String()
	case *Function:
		params := make([]string, len(nodeT.Params))
		for i, p := range nodeT.Params {
			params[i] = p.Name + " " + p.Typ.String()
		}
		return fmt.Sprintf("func(%s) %s %s", strings.Join(params, ", "), nodeT.RetType.String(), String(nodeT.Body))
	case *ConstructorApp:
		return fmt.Sprintf("%s#%d(%s)", nodeT.Constructor.Name, nodeT.Tag, nodesString(nodeT.Args))
	}
	return fmt.Sprintf("<%T>", node)
}
