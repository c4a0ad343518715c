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

type (
	// Pattern matched against a value in a match clause.
	Pattern interface {
		pattern()
	}

	// PatternWildcard matches any value.
	PatternWildcard struct{}

	// PatternVar matches any value and binds it to a variable.
	PatternVar struct {
		Var *Var
	}

	// PatternConstructor matches a value built by a given constructor
	// and matches its fields against sub-patterns.
	PatternConstructor struct {
		Constructor *Constructor
		Fields      []Pattern
	}

	// PatternTuple matches the fields of a tuple against sub-patterns.
	PatternTuple struct {
		Fields []Pattern
	}
)

var (
	_ Pattern = (*PatternWildcard)(nil)
	_ Pattern = (*PatternVar)(nil)
	_ Pattern = (*PatternConstructor)(nil)
	_ Pattern = (*PatternTuple)(nil)
)

func (*PatternWildcard) pattern()    {}
func (*PatternVar) pattern()         {}
func (*PatternConstructor) pattern() {}
func (*PatternTuple) pattern()       {}

// PatternVars returns the variables bound by a pattern, from left to right.
func PatternVars(p Pattern) []*Var {
	var vars []*Var
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch pT := p.(type) {
		case *PatternVar:
			vars = append(vars, pT.Var)
		case *PatternConstructor:
			for _, f := range pT.Fields {
				walk(f)
			}
		case *PatternTuple:
			for _, f := range pT.Fields {
				walk(f)
			}
		}
	}
	walk(p)
	return vars
}
