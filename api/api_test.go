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

package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/aot/api"
	"github.com/gx-org/aot/api/entry"
	"github.com/gx-org/aot/api/options"
	"github.com/gx-org/aot/api/trace"
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/ir/irb"
	"github.com/gx-org/aot/examples/zoo"
	"github.com/pkg/errors"
)

func compile(t *testing.T, build func() (*ir.Module, ir.Expr, error), name string, opts ...options.Option) *api.Compiled {
	t.Helper()
	mod, expr, err := build()
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]options.Option{options.WithLogger(logging.Discard())}, opts...)
	comp, err := api.Compile(context.Background(), mod, expr, name, opts...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return comp
}

func TestEndToEnd(t *testing.T) {
	comp := compile(t, zoo.AddMul, "f")
	dev := comp.Func.Device()
	tests := []struct {
		desc string
		arg  any
	}{
		{desc: "go scalar", arg: float32(3)},
		{desc: "host tensor", arg: entry.Tensor{Values: []float32{3}}},
		{desc: "value", arg: values.Atom[float32](dev, 3)},
		{desc: "handle", arg: values.Atom[float32](dev, 3).Handle()},
		{desc: "array", arg: values.Atom[float32](dev, 3).Array()},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := comp.Func.CallGo(test.arg)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if diff := cmp.Diff(float32(18), got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGlobalEntry(t *testing.T) {
	comp := compile(t, zoo.Countdown, "countdown")
	if len(comp.Program.Globals) != 1 {
		t.Errorf("got %d globals but want 1", len(comp.Program.Globals))
	}
	got, err := comp.Func.CallGo(float32(4))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff(float32(0), got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestRegistryReuse(t *testing.T) {
	reg := aot.NewRegistry()
	first := compile(t, zoo.AddMul, "f", options.WithRegistry(reg))
	second := compile(t, zoo.AddMul, "g", options.WithRegistry(reg))
	if got := reg.Compilations(); got != 2 {
		t.Errorf("got %d kernel compilations but want 2", got)
	}
	if diff := cmp.Diff(first.Source.Kernels, second.Source.Kernels); diff != "" {
		t.Errorf("programs use different kernels (-first +second):\n%s", diff)
	}
}

func TestTrace(t *testing.T) {
	var calls []string
	tr := trace.CallbackFunc(func(name string, args []values.Value, out values.Value, elapsed time.Duration) error {
		if len(args) != 1 || out == nil || elapsed < 0 {
			return errors.Errorf("unexpected trace: %d args, output %v", len(args), out)
		}
		calls = append(calls, name)
		return nil
	})
	comp := compile(t, zoo.AddMul, "f", options.WithTrace(tr))
	for range 3 {
		if _, err := comp.Func.Call(float32(1)); err != nil {
			t.Fatalf("%+v", err)
		}
	}
	if diff := cmp.Diff([]string{"f", "f", "f"}, calls); diff != "" {
		t.Errorf("unexpected traces (-want +got):\n%s", diff)
	}
}

func TestCallErrors(t *testing.T) {
	comp := compile(t, zoo.AddMul, "f")
	if _, err := comp.Func.Call(); err == nil {
		t.Errorf("expected an error for a missing argument")
	}
	_, err := comp.Func.Call("three")
	var marshalErr *entry.MarshalTypeError
	if !errors.As(err, &marshalErr) {
		t.Fatalf("got error %v but want a MarshalTypeError", err)
	}
	if marshalErr.Index != 0 || marshalErr.Type != "string" {
		t.Errorf("got %+v but want index 0 and type string", marshalErr)
	}
}

func TestCompileErrors(t *testing.T) {
	other := ir.NewModule("other")
	gv, err := other.Declare("g", ir.Func(irb.F32(), irb.F32()))
	if err != nil {
		t.Fatal(err)
	}
	mod, fn, err := zoo.AddMul()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		desc string
		expr ir.Expr
		name string
	}{
		{desc: "no name", expr: fn, name: ""},
		{desc: "constant entry", expr: irb.Scalar[float32](1), name: "c"},
		{desc: "global of another module", expr: gv, name: "g"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if _, err := api.Compile(context.Background(), mod, test.expr, test.name, options.WithLogger(logging.Discard())); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestUnsupportedOperator(t *testing.T) {
	x := irb.Var("x", irb.F32())
	fn := ir.NewFunction([]*ir.Var{x}, irb.Apply(irb.Primitive("cosine", irb.F32()), x), irb.F32())
	_, err := api.Compile(context.Background(), ir.NewModule("cos"), fn, "cos", options.WithLogger(logging.Discard()))
	var compErr *aot.KernelCompilationError
	if !errors.As(err, &compErr) {
		t.Fatalf("got error %v but want a KernelCompilationError", err)
	}
}
