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

package graph_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/ir/irb"
	"github.com/gx-org/aot/golang/backend/graph"
	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
)

func send(t *testing.T, dev *platform.Device, values []float32, dims ...int) *platform.Handle {
	t.Helper()
	h, err := dev.Send(values, dims)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func call[T float32 | bool](t *testing.T, k *graph.Kernel, args ...*platform.Handle) []T {
	t.Helper()
	out := args[0].Device().Output()
	if err := k.Call(append(args, out)); err != nil {
		t.Fatalf("%+v", err)
	}
	values, err := kernels.Values[T](out.Array())
	if err != nil {
		t.Fatal(err)
	}
	return values
}

func TestFlatKernel(t *testing.T) {
	plat := platform.New()
	x := irb.Var("x", irb.F32(3))
	y := irb.Var("y", irb.F32(3))
	body := irb.Let("s", irb.Elementwise("add", x, y), func(s *ir.Var) ir.Expr {
		return irb.Elementwise("multiply", s, s)
	})
	fn := ir.NewPrimitiveFunction([]*ir.Var{x, y}, body, irb.F32(3))
	k, err := graph.Compile(plat, "addsquare", fn)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if k.Name() != "addsquare" || k.Arity() != 3 {
		t.Errorf("got kernel %s/%d but want addsquare/3", k.Name(), k.Arity())
	}
	dev := plat.Device()
	got := call[float32](t, k, send(t, dev, []float32{1, 2, 3}, 3), send(t, dev, []float32{1, 1, 1}, 3))
	if diff := cmp.Diff([]float32{4, 9, 16}, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestSpreadKernel(t *testing.T) {
	plat := platform.New()
	p := irb.Var("t", ir.TupleOf(irb.F32(), irb.F32(), irb.F32()))
	get := func(i int) ir.Expr {
		item, err := ir.NewTupleGetItem(p, i)
		if err != nil {
			t.Fatal(err)
		}
		return item
	}
	body := irb.Elementwise("subtract", get(0), irb.Elementwise("divide", get(1), get(2)))
	k, err := graph.Compile(plat, "spread", ir.NewPrimitiveFunction([]*ir.Var{p}, body, irb.F32()))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if k.Arity() != 4 {
		t.Errorf("got arity %d but want 4", k.Arity())
	}
	dev := plat.Device()
	got := call[float32](t, k, send(t, dev, []float32{10}), send(t, dev, []float32{6}), send(t, dev, []float32{3}))
	if diff := cmp.Diff([]float32{8}, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestMathKernels(t *testing.T) {
	tests := []struct {
		op   string
		in   []float32
		want []float32
	}{
		{"negative", []float32{1, -2}, []float32{-1, 2}},
		{"exp", []float32{0, 1}, []float32{1, float32(math.E)}},
		{"log", []float32{1, float32(math.E)}, []float32{0, 1}},
		{"tanh", []float32{0}, []float32{0}},
		{"sigmoid", []float32{0}, []float32{0.5}},
		{"relu", []float32{-1, 2}, []float32{0, 2}},
		{"sqrt", []float32{4, 9}, []float32{2, 3}},
		{"copy", []float32{4, 9}, []float32{4, 9}},
	}
	plat := platform.New()
	for _, test := range tests {
		t.Run(test.op, func(t *testing.T) {
			typ := irb.F32(len(test.in))
			k, err := graph.Compile(plat, test.op, irb.Primitive(test.op, typ))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			got := call[float32](t, k, send(t, plat.Device(), test.in, len(test.in)))
			if diff := cmp.Diff(test.want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComparison(t *testing.T) {
	plat := platform.New()
	x := irb.Var("x", irb.F32(3))
	fn := ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Op("greater", irb.Bool(3), x, irb.Scalar[float32](1)), irb.Bool(3))
	k, err := graph.Compile(plat, "greater", fn)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	got := call[bool](t, k, send(t, plat.Device(), []float32{0, 1, 2}, 3))
	if diff := cmp.Diff([]bool{false, false, true}, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	x := irb.Var("x", irb.F32())
	adt := ir.NewDataType("T")
	tests := []struct {
		name string
		fn   *ir.Function
	}{
		{"unknown-op", irb.Primitive("conv2d", irb.F32())},
		{"tuple-output", ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Tuple(x, x), ir.TupleOf(irb.F32(), irb.F32()))},
		{"adt-param", irb.Primitive("copy", adt)},
		{"free-var", ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Var("y", irb.F32()), irb.F32())},
		{"mismatched-dtypes", ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Elementwise("add", x, irb.Scalar[float64](1)), irb.F32())},
		{"math-on-bool", irb.Primitive("exp", irb.Bool())},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := graph.Compile(platform.New(), test.name, test.fn); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	plat := platform.New()
	dev := plat.Device()
	k, err := graph.Compile(plat, "add", irb.Primitive("add", irb.F32(2), irb.F32(2)))
	if err != nil {
		t.Fatal(err)
	}
	a := send(t, dev, []float32{1, 2}, 2)
	if err := k.Call([]*platform.Handle{a, dev.Output()}); err == nil {
		t.Errorf("expected an arity error")
	}
	if err := k.Call([]*platform.Handle{a, send(t, dev, []float32{1, 2, 3}, 3), dev.Output()}); err == nil {
		t.Errorf("expected a shape error")
	}
	if err := k.Call([]*platform.Handle{a, dev.Output(), dev.Output()}); err == nil {
		t.Errorf("expected an error for an unset input")
	}
	out := dev.Output()
	if err := k.Call([]*platform.Handle{a, a, out}); err != nil {
		t.Fatal(err)
	}
	if err := k.Call([]*platform.Handle{a, a, out}); err == nil {
		t.Errorf("expected an error when the output slot is already set")
	}
}

func TestOps(t *testing.T) {
	want := []string{"add", "copy", "divide", "equal", "exp", "greater", "less", "log", "multiply", "negative", "relu", "sigmoid", "sqrt", "subtract", "tanh"}
	if diff := cmp.Diff(want, graph.Ops()); diff != "" {
		t.Errorf("unexpected operators (-want +got):\n%s", diff)
	}
}
