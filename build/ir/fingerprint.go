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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Fingerprint is the structural identity of a function.
//
// Two functions have the same encoding if and only if they are equal up to
// the names of their local variables.
type Fingerprint struct {
	// Encoding is the canonical encoding of the function.
	Encoding string
	// Digest is the SHA-256 of the encoding.
	Digest [sha256.Size]byte
}

// KernelName returns the deterministic name of the kernel compiled for the function.
func (f Fingerprint) KernelName() string {
	return "op" + hex.EncodeToString(f.Digest[:8])
}

// FingerprintOf computes the fingerprint of a function.
func FingerprintOf(fn *Function) (Fingerprint, error) {
	enc := encoder{vars: make(map[*Var]int)}
	if err := enc.expr(fn); err != nil {
		return Fingerprint{}, err
	}
	s := enc.b.String()
	return Fingerprint{Encoding: s, Digest: sha256.Sum256([]byte(s))}, nil
}

type encoder struct {
	b    strings.Builder
	vars map[*Var]int
}

func (e *encoder) write(ss ...string) {
	for _, s := range ss {
		e.b.WriteString(s)
	}
}

func (e *encoder) bind(v *Var) {
	id := len(e.vars)
	e.vars[v] = id
	e.write("%", strconv.Itoa(id), ":")
	e.typ(v.Typ)
}

func (e *encoder) typ(t Type) {
	switch tT := t.(type) {
	case nil:
		e.write("_")
	case *DataType:
		// Data types are nominal.
		e.write("data", strconv.Quote(tT.Name))
	default:
		e.write(t.String())
	}
}

func (e *encoder) exprs(kind string, exprs []Expr) error {
	e.write("(", kind)
	for _, x := range exprs {
		e.write(" ")
		if err := e.expr(x); err != nil {
			return err
		}
	}
	e.write(")")
	return nil
}

func (e *encoder) expr(expr Expr) error {
	switch exprT := expr.(type) {
	case *Var:
		id, ok := e.vars[exprT]
		if !ok {
			return errors.Errorf("variable %s is not bound", exprT.Name)
		}
		e.write("%", strconv.Itoa(id))
	case *Constant:
		e.write("(const ")
		e.typ(exprT.Typ)
		e.write(" ", fmt.Sprintf("%v", exprT.Values), ")")
	case *GlobalVar:
		e.write("@", strconv.Quote(exprT.Name))
	case *Op:
		e.write("#", strconv.Quote(exprT.Name))
	case *Constructor:
		e.write("(ctor data", strconv.Quote(exprT.Data.Name), " ", strconv.Itoa(exprT.Tag), ")")
	case *Call:
		e.write("(call ")
		if err := e.expr(exprT.Callee); err != nil {
			return err
		}
		e.write(" ")
		e.typ(exprT.Typ)
		if err := e.exprs("", exprT.Args); err != nil {
			return err
		}
		e.write(")")
	case *Let:
		e.write("(let ")
		if err := e.expr(exprT.Value); err != nil {
			return err
		}
		e.write(" ")
		e.bind(exprT.Var)
		e.write(" ")
		if err := e.expr(exprT.Body); err != nil {
			return err
		}
		e.write(")")
	case *If:
		return e.exprs("if", []Expr{exprT.Cond, exprT.Then, exprT.Else})
	case *Tuple:
		return e.exprs("tuple", exprT.Fields)
	case *TupleGetItem:
		e.write("(get ", strconv.Itoa(exprT.Index), " ")
		if err := e.expr(exprT.Tuple); err != nil {
			return err
		}
		e.write(")")
	case *Match:
		e.write("(match ")
		if err := e.expr(exprT.Data); err != nil {
			return err
		}
		for _, clause := range exprT.Clauses {
			e.write(" (")
			e.pattern(clause.Pattern)
			e.write(" ")
			if err := e.expr(clause.Body); err != nil {
				return err
			}
			e.write(")")
		}
		e.write(")")
	case *Function:
		e.write("(fn")
		if exprT.primitive {
			e.write(" primitive")
		}
		e.write(" (")
		for i, p := range exprT.Params {
			if i > 0 {
				e.write(" ")
			}
			e.bind(p)
		}
		e.write(") ")
		e.typ(exprT.RetType)
		e.write(" ")
		if err := e.expr(exprT.Body); err != nil {
			return err
		}
		e.write(")")
	default:
		return errors.Errorf("cannot fingerprint expression of type %T", expr)
	}
	return nil
}

func (e *encoder) pattern(p Pattern) {
	switch pT := p.(type) {
	case *PatternWildcard:
		e.write("_")
	case *PatternVar:
		e.bind(pT.Var)
	case *PatternConstructor:
		e.write("(ctor data", strconv.Quote(pT.Constructor.Data.Name), " ", strconv.Itoa(pT.Constructor.Tag))
		for _, f := range pT.Fields {
			e.write(" ")
			e.pattern(f)
		}
		e.write(")")
	case *PatternTuple:
		e.write("(tuple")
		for _, f := range pT.Fields {
			e.write(" ")
			e.pattern(f)
		}
		e.write(")")
	}
}
