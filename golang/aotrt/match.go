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

package aotrt

import (
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/build/ir"
	"github.com/pkg/errors"
)

type (
	// Pattern matches a value and binds variables.
	Pattern func(v values.Value, binds []values.Value) ([]values.Value, bool)

	// Clause of a match.
	// The body receives the variables bound by the pattern from left to right.
	Clause struct {
		Pattern Pattern
		Body    func(binds []values.Value) (values.Value, error)
	}
)

// Wildcard matches anything.
func Wildcard() Pattern {
	return func(_ values.Value, binds []values.Value) ([]values.Value, bool) {
		return binds, true
	}
}

// Bind matches anything and binds the value.
func Bind() Pattern {
	return func(v values.Value, binds []values.Value) ([]values.Value, bool) {
		return append(binds, v), true
	}
}

func matchAll(fields []Pattern, vals []values.Value, binds []values.Value) ([]values.Value, bool) {
	if len(fields) != len(vals) {
		return nil, false
	}
	for i, p := range fields {
		var ok bool
		if binds, ok = p(vals[i], binds); !ok {
			return nil, false
		}
	}
	return binds, true
}

// Ctor matches data built by the constructor with the given tag.
func Ctor(tag int, fields ...Pattern) Pattern {
	return func(v values.Value, binds []values.Value) ([]values.Value, bool) {
		data, ok := v.(*values.Data)
		if !ok || data.Tag() != tag {
			return nil, false
		}
		return matchAll(fields, data.Fields, binds)
	}
}

// TupleOf matches the fields of a tuple.
func TupleOf(fields ...Pattern) Pattern {
	return func(v values.Value, binds []values.Value) ([]values.Value, bool) {
		tuple, ok := v.(*values.Tuple)
		if !ok {
			return nil, false
		}
		return matchAll(fields, tuple.Fields, binds)
	}
}

// FromIR converts a pattern of the source IR.
func FromIR(p ir.Pattern) (Pattern, error) {
	switch pT := p.(type) {
	case *ir.PatternWildcard:
		return Wildcard(), nil
	case *ir.PatternVar:
		return Bind(), nil
	case *ir.PatternConstructor:
		fields, err := fromIRs(pT.Fields)
		if err != nil {
			return nil, err
		}
		return Ctor(pT.Constructor.Tag, fields...), nil
	case *ir.PatternTuple:
		fields, err := fromIRs(pT.Fields)
		if err != nil {
			return nil, err
		}
		return TupleOf(fields...), nil
	}
	return nil, errors.Errorf("pattern %T not supported", p)
}

func fromIRs(ps []ir.Pattern) ([]Pattern, error) {
	pats := make([]Pattern, len(ps))
	for i, p := range ps {
		var err error
		if pats[i], err = FromIR(p); err != nil {
			return nil, err
		}
	}
	return pats, nil
}

// Match evaluates the body of the first clause matching a value.
func (r *Runtime) Match(v values.Value, clauses ...Clause) (values.Value, error) {
	for _, clause := range clauses {
		binds, ok := clause.Pattern(v, nil)
		if ok {
			return clause.Body(binds)
		}
	}
	return nil, errors.Errorf("no clause matching %s", valueString(v))
}
