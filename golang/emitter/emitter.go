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
	"go/format"
	"go/token"
	"text/template"

	"github.com/gx-org/aot/base/tmpl"
	"github.com/gx-org/aot/base/uname"
	"github.com/gx-org/aot/build/ir"
	"github.com/pkg/errors"
)

// Source is the output of the emitter.
type Source struct {
	// Package is the name of the Go package.
	Package string
	// Go is the formatted Go source of the program.
	Go []byte
	// ABI declares the native symbols of the program in LLVM assembly.
	ABI string
	// GoMod is the go.mod file of the emitted module.
	GoMod []byte
	// Params are the constants captured by the program, in the order
	// expected by the entry point.
	Params []*ir.Constant
	// Kernels are the sorted names of the kernels called by the program.
	Kernels []string
	// DataTypes are the algebraic data types used by the program.
	DataTypes []*ir.DataType
	// NumInputs is the number of inputs of the entry point.
	NumInputs int
}

const goSource = `// Code generated by aotc. DO NOT EDIT.

package {{.Package}}

import (
{{- if .UsesLowered}}
	"github.com/gx-org/aot/build/lowered"
{{- end}}
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/golang/aotrt"
)

// Entry is the name of the entry point.
const Entry = {{printf "%q" .Entry}}

// NumParams is the number of parameters captured by the program.
const NumParams = {{.NumParams}}

// Kernels called by the program.
var Kernels = []string{
{{- range .Kernels}}
	{{printf "%q" .}},
{{- end}}
}

{{.Funcs}}

// Register defines the functions of the program in a runtime.
func Register(r *aotrt.Runtime) error {
{{- range .Defs}}
	if err := r.Define({{printf "%q" .Name}}, {{.Arity}}, {{.GoName}}); err != nil {
		return err
	}
{{- end}}
	return nil
}
`

var goSourceTmpl = template.Must(template.New("goSourceTMPL").Parse(goSource))

type definition struct {
	Name   string
	GoName string
	Arity  int
}

type sourceData struct {
	Package     string
	Entry       string
	NumParams   int
	Kernels     []string
	Funcs       string
	Defs        []definition
	UsesLowered bool
}

// Emit the Go source, the ABI declarations, and the go.mod of a program.
func Emit(prog *Program) (*Source, error) {
	col := newCollector()
	if err := col.program(prog); err != nil {
		return nil, err
	}
	pkg := prog.Package
	if pkg == "" {
		pkg = uname.Identifier(prog.Name)
	}
	if !token.IsIdentifier(pkg) || pkg == "_" {
		return nil, errors.Errorf("invalid package name %q", pkg)
	}
	data := sourceData{
		Package:   pkg,
		Entry:     prog.Name,
		NumParams: col.params.Size(),
		Kernels:   col.sortedKernels(),
	}
	funcNames := uname.New()
	funcNames.Register("Register", "Entry", "NumParams", "Kernels")
	defs := make([]definition, 0, len(prog.Globals)+1)
	for _, g := range prog.Globals {
		defs = append(defs, definition{
			Name:   g.Name,
			GoName: funcNames.Name("global_" + g.Name),
			Arity:  len(g.Function.Params),
		})
	}
	defs = append(defs, definition{
		Name:   prog.Name,
		GoName: funcNames.Name("entry_" + prog.Name),
		Arity:  len(prog.Entry.Params),
	})
	var err error
	data.Funcs, err = tmpl.IterateFunc(defs, func(i int, d definition) (string, error) {
		fn := prog.Entry
		if i < len(prog.Globals) {
			fn = prog.Globals[i].Function
		}
		w := newFuncWriter(col)
		src, err := w.function(d.GoName, fn)
		if err != nil {
			return "", errors.Wrapf(err, "cannot emit %s", d.Name)
		}
		data.UsesLowered = data.UsesLowered || w.usesLowered
		return src, nil
	})
	if err != nil {
		return nil, err
	}
	data.Defs = defs
	src, err := tmpl.Exec(goSourceTmpl, data)
	if err != nil {
		return nil, err
	}
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return nil, errors.Errorf("cannot format generated source: %v\n%s", err, src)
	}
	abi, err := emitABI(prog.Name, col.params.Size(), len(prog.Entry.Params), col.kernels)
	if err != nil {
		return nil, err
	}
	goMod, err := emitGoMod(prog)
	if err != nil {
		return nil, err
	}
	return &Source{
		Package:   pkg,
		Go:        formatted,
		ABI:       abi,
		GoMod:     goMod,
		Params:    col.paramList(),
		Kernels:   data.Kernels,
		DataTypes: col.dataTypes,
		NumInputs: len(prog.Entry.Params),
	}, nil
}
