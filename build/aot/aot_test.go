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

package aot_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/ir/irb"
	"github.com/gx-org/aot/build/lowered"
	"github.com/gx-org/aot/examples/zoo"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/pkg/errors"
)

type fakeKernel struct {
	name  string
	arity int
}

func (k *fakeKernel) Name() string { return k.name }

func (k *fakeKernel) Arity() int { return k.arity }

func (k *fakeKernel) Call([]*platform.Handle) error {
	return errors.Errorf("fake kernel %s cannot be called", k.name)
}

// fakeJIT compiles kernels without a backend.
// Kernels of primitive functions calling an operator named in fail cannot be compiled.
type fakeJIT struct {
	mut      sync.Mutex
	compiled []string
	fail     map[string]bool
}

func numInputs(fn *ir.Function) int {
	n := 0
	for _, p := range fn.Params {
		if tuple, ok := p.Typ.(*ir.TupleType); ok {
			n += len(tuple.Fields)
		} else {
			n++
		}
	}
	return n
}

func (jit *fakeJIT) CompileKernel(name string, fn *ir.Function) (aot.Kernel, error) {
	jit.mut.Lock()
	defer jit.mut.Unlock()
	if call, ok := fn.Body.(*ir.Call); ok {
		if op, ok := call.Callee.(*ir.Op); ok && jit.fail[op.Name] {
			return nil, errors.Errorf("operator %s not supported", op.Name)
		}
	}
	jit.compiled = append(jit.compiled, name)
	return &fakeKernel{name: name, arity: numInputs(fn) + 1}, nil
}

func newCompiler(jit aot.KernelCompiler, opts ...aot.Option) *aot.Compiler {
	opts = append([]aot.Option{aot.WithLogger(logging.Discard())}, opts...)
	return aot.New(ir.NewModule("test"), jit, opts...)
}

func packedCalls(t *testing.T, node lowered.Node) []*lowered.PackedCall {
	t.Helper()
	fn, ok := node.(*lowered.Function)
	if !ok {
		t.Fatalf("got %T but want a function", node)
	}
	decl, ok := fn.Body.(*lowered.Decl)
	if !ok {
		t.Fatalf("got body %T but want a declaration block", fn.Body)
	}
	var calls []*lowered.PackedCall
	for _, binding := range decl.Bindings {
		call, ok := binding.Value.(*lowered.PackedCall)
		if !ok {
			t.Fatalf("binding %s: got %T but want a packed call", binding.Var.Name, binding.Value)
		}
		calls = append(calls, call)
	}
	return calls
}

func TestIdempotentFusionCaching(t *testing.T) {
	x := irb.Var("x", irb.F32(4))
	add1 := irb.Primitive("add", irb.F32(4), irb.F32(4))
	add2 := irb.Primitive("add", irb.F32(4), irb.F32(4))
	mul := irb.Primitive("multiply", irb.F32(4), irb.F32(4))
	body := irb.Let("a", irb.Apply(add1, x, x), func(a *ir.Var) ir.Expr {
		return irb.Let("b", irb.Apply(add2, a, x), func(b *ir.Var) ir.Expr {
			return irb.Let("c", irb.Apply(mul, b, x), func(c *ir.Var) ir.Expr {
				return c
			})
		})
	})
	jit := &fakeJIT{}
	comp := newCompiler(jit)
	node, err := comp.Lower(ir.NewFunction([]*ir.Var{x}, body, irb.F32(4)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got := comp.Registry().Compilations(); got != 2 {
		t.Errorf("got %d compilations but want 2", got)
	}
	if diff := cmp.Diff(2, len(jit.compiled)); diff != "" {
		t.Errorf("unexpected number of JIT calls (-want +got):\n%s", diff)
	}
	calls := packedCalls(t, node)
	if calls[0].Kernel != calls[1].Kernel {
		t.Errorf("alpha-equivalent primitives compiled into different kernels: %s != %s", calls[0].Kernel, calls[1].Kernel)
	}
	if calls[0].Kernel == calls[2].Kernel {
		t.Errorf("distinct primitives share kernel %s", calls[0].Kernel)
	}
	if diff := cmp.Diff(sortedUnique(calls[0].Kernel, calls[2].Kernel), comp.Registry().Names()); diff != "" {
		t.Errorf("unexpected registry content (-want +got):\n%s", diff)
	}
	// Lowering again does not compile anything.
	if _, err := comp.Lower(ir.NewFunction([]*ir.Var{x}, body, irb.F32(4))); err != nil {
		t.Fatalf("%+v", err)
	}
	if got := comp.Registry().Compilations(); got != 2 {
		t.Errorf("got %d compilations after a second lowering but want 2", got)
	}
}

func sortedUnique(a, b string) []string {
	if a > b {
		a, b = b, a
	}
	return []string{a, b}
}

func TestSharedRegistry(t *testing.T) {
	reg := aot.NewRegistry()
	fn := irb.Primitive("add", irb.F32(), irb.F32())
	for i := range 3 {
		jit := &fakeJIT{}
		comp := newCompiler(jit, aot.WithRegistry(reg))
		if _, err := comp.Lower(fn); err != nil {
			t.Fatalf("%+v", err)
		}
		want := 0
		if i == 0 {
			want = 1
		}
		if len(jit.compiled) != want {
			t.Errorf("session %d: got %d compilations but want %d", i, len(jit.compiled), want)
		}
	}
	if got := reg.Compilations(); got != 1 {
		t.Errorf("got %d compilations but want 1", got)
	}
	// A compiler owns its registry by default.
	jit := &fakeJIT{}
	if _, err := newCompiler(jit).Lower(fn); err != nil {
		t.Fatalf("%+v", err)
	}
	if len(jit.compiled) != 1 {
		t.Errorf("got %d compilations with a new registry but want 1", len(jit.compiled))
	}
}

func TestConcurrentLoadOrCompile(t *testing.T) {
	reg := aot.NewRegistry()
	fp, err := ir.FingerprintOf(irb.Primitive("add", irb.F32(), irb.F32()))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	kernels := make([]aot.Kernel, 16)
	errs := make([]error, len(kernels))
	for i := range kernels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kernels[i], errs[i] = reg.LoadOrCompile(fp, func(name string) (aot.Kernel, error) {
				return &fakeKernel{name: name, arity: 3}, nil
			})
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if kernels[i] != kernels[0] {
			t.Errorf("call %d returned a different kernel", i)
		}
	}
	if got := reg.Compilations(); got != 1 {
		t.Errorf("got %d compilations but want 1", got)
	}
}

func TestFingerprintCollision(t *testing.T) {
	reg := aot.NewRegistry()
	fp, err := ir.FingerprintOf(irb.Primitive("add", irb.F32(), irb.F32()))
	if err != nil {
		t.Fatal(err)
	}
	compile := func(name string) (aot.Kernel, error) {
		return &fakeKernel{name: name, arity: 3}, nil
	}
	if _, err := reg.LoadOrCompile(fp, compile); err != nil {
		t.Fatal(err)
	}
	forged := fp
	forged.Encoding = "forged"
	if _, err := reg.LoadOrCompile(forged, compile); err == nil {
		t.Errorf("expected a fingerprint collision error")
	}
}

func countdownModule(t *testing.T) *ir.Module {
	t.Helper()
	mod := ir.NewModule("countdown")
	n := irb.Var("n", irb.F32())
	countdown, err := mod.Declare("countdown", ir.Func(irb.F32(), irb.F32()))
	if err != nil {
		t.Fatal(err)
	}
	greater := ir.NewPrimitiveFunction(
		[]*ir.Var{irb.Var("a", irb.F32()), irb.Var("b", irb.F32())}, nil, irb.Bool())
	greater.Body = irb.Op("greater", irb.Bool(), greater.Params[0], greater.Params[1])
	sub := irb.Primitive("subtract", irb.F32(), irb.F32())
	body := irb.If(
		irb.Apply(greater, n, irb.Scalar[float32](0)),
		irb.Apply(countdown, irb.Apply(sub, n, irb.Scalar[float32](1))),
		n,
	)
	if err := mod.Define(countdown, ir.NewFunction([]*ir.Var{n}, body, irb.F32())); err != nil {
		t.Fatal(err)
	}
	return mod
}

func TestRecursiveResolution(t *testing.T) {
	mod := countdownModule(t)
	comp := aot.New(mod, &fakeJIT{}, aot.WithLogger(logging.Discard()))
	fn, err := comp.LowerGlobal("countdown")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	globals := comp.Globals()
	if len(globals) != 1 || globals[0].Name != "countdown" || globals[0].Function != fn {
		t.Errorf("unexpected globals: %v", globals)
	}
	cond, ok := fn.Body.(*lowered.If)
	if !ok {
		t.Fatalf("got body %T but want an if", fn.Body)
	}
	invoke, ok := cond.Then.(*lowered.Invoke)
	if !ok {
		t.Fatalf("got then branch %T but want an invoke", cond.Then)
	}
	if global, ok := invoke.Callee.(*lowered.Global); !ok || global.Src.Name != "countdown" {
		t.Errorf("got callee %s but want @countdown", lowered.String(invoke.Callee))
	}
	// Resolving again returns the same function.
	again, err := comp.LowerGlobal("countdown")
	if err != nil {
		t.Fatal(err)
	}
	if again != fn || len(comp.Globals()) != 1 {
		t.Errorf("global lowered twice")
	}
}

func TestMutualRecursion(t *testing.T) {
	mod := ir.NewModule("parity")
	fnT := ir.Func(irb.Bool(), irb.I64())
	even, err := mod.Declare("even", fnT)
	if err != nil {
		t.Fatal(err)
	}
	odd, err := mod.Declare("odd", fnT)
	if err != nil {
		t.Fatal(err)
	}
	define := func(gv, other *ir.GlobalVar) {
		n := irb.Var("n", irb.I64())
		body := irb.Apply(other, n)
		if err := mod.Define(gv, ir.NewFunction([]*ir.Var{n}, body, irb.Bool())); err != nil {
			t.Fatal(err)
		}
	}
	define(even, odd)
	define(odd, even)
	comp := aot.New(mod, &fakeJIT{}, aot.WithLogger(logging.Discard()))
	if _, err := comp.LowerGlobal("even"); err != nil {
		t.Fatalf("%+v", err)
	}
	var names []string
	for _, g := range comp.Globals() {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{"odd", "even"}, names); diff != "" {
		t.Errorf("unexpected resolution order (-want +got):\n%s", diff)
	}
}

func varSources(t *testing.T, nodes []lowered.Node) []*ir.Var {
	t.Helper()
	srcs := make([]*ir.Var, len(nodes))
	for i, n := range nodes {
		v, ok := n.(*lowered.Var)
		if !ok {
			t.Fatalf("argument %d: got %T but want a variable", i, n)
		}
		srcs[i] = v.Src
	}
	return srcs
}

func TestLowerAddMul(t *testing.T) {
	mod, expr, err := zoo.AddMul()
	if err != nil {
		t.Fatal(err)
	}
	jit := &fakeJIT{}
	comp := aot.New(mod, jit, aot.WithLogger(logging.Discard()))
	fn, err := comp.LowerFunction(expr.(*ir.Function))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	x := fn.Params[0]
	calls := packedCalls(t, fn)
	decl := fn.Body.(*lowered.Decl)
	if len(decl.Bindings) != 2 {
		t.Fatalf("got %d bindings but want 2", len(decl.Bindings))
	}
	y, z := decl.Bindings[0].Var, decl.Bindings[1].Var
	if y.Name != "y" || z.Name != "z" {
		t.Errorf("got bindings %s, %s but want y, z", y.Name, z.Name)
	}
	if diff := cmp.Diff(jit.compiled, []string{calls[0].Kernel, calls[1].Kernel}); diff != "" {
		t.Errorf("unexpected kernels (-compiled +called):\n%s", diff)
	}
	if calls[0].Kernel == calls[1].Kernel {
		t.Errorf("add and multiply share kernel %s", calls[0].Kernel)
	}
	wantArgs := [][]*ir.Var{{x, x}, {y, x}}
	for i, call := range calls {
		if call.Arity != 3 || call.Convention != lowered.Flat {
			t.Errorf("call %d: got arity %d and convention %s but want 3 and flat", i, call.Arity, call.Convention)
		}
		got := varSources(t, call.Args)
		if len(got) != len(wantArgs[i]) {
			t.Errorf("call %d: got %d arguments but want %d", i, len(got), len(wantArgs[i]))
			continue
		}
		for j := range got {
			if got[j] != wantArgs[i][j] {
				t.Errorf("call %d: argument %d: got %s but want %s", i, j, got[j].Name, wantArgs[i][j].Name)
			}
		}
	}
	if body, ok := decl.Body.(*lowered.Var); !ok || body.Src != z {
		t.Errorf("got trailing expression %s but want z", lowered.String(decl.Body))
	}
}

func TestLetFlattening(t *testing.T) {
	const numBindings = 5
	x := irb.Var("x", irb.F32())
	neg := irb.Primitive("negative", irb.F32())
	var vars []*ir.Var
	var build func(i int, prev ir.Expr) ir.Expr
	build = func(i int, prev ir.Expr) ir.Expr {
		if i == numBindings {
			return irb.Tuple(prev, x)
		}
		return irb.Let(fmt.Sprintf("v%d", i), irb.Apply(neg, prev), func(v *ir.Var) ir.Expr {
			vars = append(vars, v)
			return build(i+1, v)
		})
	}
	body := build(0, x)
	comp := newCompiler(&fakeJIT{})
	node, err := comp.Lower(body)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	decl, ok := node.(*lowered.Decl)
	if !ok {
		t.Fatalf("got %T but want a declaration block", node)
	}
	if len(decl.Bindings) != numBindings {
		t.Fatalf("got %d bindings but want %d", len(decl.Bindings), numBindings)
	}
	for i, binding := range decl.Bindings {
		if binding.Var != vars[i] {
			t.Errorf("binding %d: got variable %s but want %s", i, binding.Var.Name, vars[i].Name)
		}
		call, ok := binding.Value.(*lowered.PackedCall)
		if !ok {
			t.Fatalf("binding %d: got %T but want a packed call", i, binding.Value)
		}
		want := x
		if i > 0 {
			want = vars[i-1]
		}
		if arg, ok := call.Args[0].(*lowered.Var); !ok || arg.Src != want {
			t.Errorf("binding %d: got argument %s but want %s", i, lowered.String(call.Args[0]), want.Name)
		}
	}
	tuple, ok := decl.Body.(*lowered.Tuple)
	if !ok {
		t.Fatalf("got trailing expression %T but want a tuple", decl.Body)
	}
	if got := lowered.String(tuple); got != fmt.Sprintf("(v%d, x)", numBindings-1) {
		t.Errorf("unexpected trailing expression %s", got)
	}
}

func TestCallingConvention(t *testing.T) {
	tupleT := ir.TupleOf(irb.F32(), irb.F32(), irb.F32())
	spreadFn := func() *ir.Function {
		p := irb.Var("t", tupleT)
		get := func(i int) ir.Expr {
			item, err := ir.NewTupleGetItem(p, i)
			if err != nil {
				t.Fatal(err)
			}
			return item
		}
		body := irb.Op("add", irb.F32(), get(0), irb.Op("multiply", irb.F32(), get(1), get(2)))
		return ir.NewPrimitiveFunction([]*ir.Var{p}, body, irb.F32())
	}
	flatFn := irb.Primitive("add", irb.F32(), irb.F32(), irb.F32())
	a, b, c := irb.Var("a", irb.F32()), irb.Var("b", irb.F32()), irb.Var("c", irb.F32())
	tuple := irb.Var("tuple", tupleT)
	tests := []struct {
		name      string
		call      *ir.Call
		wantConv  lowered.Convention
		wantArity int
		wantErr   bool
	}{
		{
			name:      "spread",
			call:      irb.Apply(spreadFn(), tuple),
			wantConv:  lowered.Spread,
			wantArity: 4,
		},
		{
			name:      "spread-literal",
			call:      irb.Apply(spreadFn(), irb.Tuple(a, b, c)),
			wantConv:  lowered.Spread,
			wantArity: 4,
		},
		{
			name:      "flat",
			call:      irb.Apply(flatFn, a, b, c),
			wantConv:  lowered.Flat,
			wantArity: 4,
		},
		{
			name:    "mixed",
			call:    irb.Apply(flatFn, tuple, b, c),
			wantErr: true,
		},
		{
			name:    "tuple-of-tuple",
			call:    irb.Apply(spreadFn(), irb.Var("nested", ir.TupleOf(tupleT))),
			wantErr: true,
		},
		{
			name:    "missing-argument",
			call:    irb.Apply(flatFn, a, b),
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			comp := newCompiler(&fakeJIT{})
			node, err := comp.Lower(test.call)
			if test.wantErr {
				var shapeErr *aot.TypeShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("got error %v but want a TypeShapeError", err)
				}
				if shapeErr.Expr != test.call {
					t.Errorf("error points at %s but want %s", ir.String(shapeErr.Expr), ir.String(test.call))
				}
				return
			}
			if err != nil {
				t.Fatalf("%+v", err)
			}
			call, ok := node.(*lowered.PackedCall)
			if !ok {
				t.Fatalf("got %T but want a packed call", node)
			}
			if call.Convention != test.wantConv {
				t.Errorf("got convention %s but want %s", call.Convention, test.wantConv)
			}
			if call.Arity != test.wantArity {
				t.Errorf("got arity %d but want %d", call.Arity, test.wantArity)
			}
		})
	}
}

func TestFailureIsolation(t *testing.T) {
	jit := &fakeJIT{fail: map[string]bool{"tanh": true}}
	comp := newCompiler(jit)
	add := irb.Primitive("add", irb.F32(), irb.F32())
	if _, err := comp.Lower(add); err != nil {
		t.Fatalf("%+v", err)
	}
	addName := comp.Registry().Names()[0]

	tanh := irb.Primitive("tanh", irb.F32())
	_, err := comp.Lower(tanh)
	var compErr *aot.KernelCompilationError
	if !errors.As(err, &compErr) {
		t.Fatalf("got error %v but want a KernelCompilationError", err)
	}
	if _, ok := comp.Registry().Lookup(compErr.Kernel); ok {
		t.Errorf("failed kernel %s has been registered", compErr.Kernel)
	}
	if _, ok := comp.Registry().Lookup(addName); !ok {
		t.Errorf("kernel %s has been evicted", addName)
	}
	if diff := cmp.Diff([]string{addName}, comp.Registry().Names()); diff != "" {
		t.Errorf("unexpected registry content (-want +got):\n%s", diff)
	}

	// Retry once the backend supports the operator.
	jit.fail = nil
	if _, err := comp.Lower(tanh); err != nil {
		t.Fatalf("%+v", err)
	}
	if got := comp.Registry().Compilations(); got != 2 {
		t.Errorf("got %d compilations but want 2", got)
	}
	if _, ok := comp.Registry().Lookup(compErr.Kernel); !ok {
		t.Errorf("kernel %s not registered after a retry", compErr.Kernel)
	}
}

func TestGlobalFailureResetsState(t *testing.T) {
	mod := ir.NewModule("failing")
	x := irb.Var("x", irb.F32())
	tanh := irb.Primitive("tanh", irb.F32())
	if _, err := mod.Add("f", ir.NewFunction([]*ir.Var{x}, irb.Apply(tanh, x), irb.F32())); err != nil {
		t.Fatal(err)
	}
	jit := &fakeJIT{fail: map[string]bool{"tanh": true}}
	comp := aot.New(mod, jit, aot.WithLogger(logging.Discard()))
	if _, err := comp.LowerGlobal("f"); err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := comp.Global("f"); ok {
		t.Errorf("global f resolved after a failure")
	}
	if len(comp.Globals()) != 0 {
		t.Errorf("unexpected globals after a failure: %v", comp.Globals())
	}
	jit.fail = nil
	if _, err := comp.LowerGlobal("f"); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, ok := comp.Global("f"); !ok {
		t.Errorf("global f not resolved after a retry")
	}
}

func TestGlobalFailureForgetsDependents(t *testing.T) {
	mod := ir.NewModule("failing")
	fnT := ir.Func(irb.F32(), irb.F32())
	a, err := mod.Declare("a", fnT)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mod.Declare("b", fnT)
	if err != nil {
		t.Fatal(err)
	}
	tanh := irb.Primitive("tanh", irb.F32())
	xa := irb.Var("x", irb.F32())
	aBody := irb.Let("t", irb.Apply(b, xa), func(tv *ir.Var) ir.Expr {
		return irb.Apply(tanh, tv)
	})
	if err := mod.Define(a, ir.NewFunction([]*ir.Var{xa}, aBody, irb.F32())); err != nil {
		t.Fatal(err)
	}
	xb := irb.Var("x", irb.F32())
	if err := mod.Define(b, ir.NewFunction([]*ir.Var{xb}, irb.Apply(a, xb), irb.F32())); err != nil {
		t.Fatal(err)
	}
	jit := &fakeJIT{fail: map[string]bool{"tanh": true}}
	comp := aot.New(mod, jit, aot.WithLogger(logging.Discard()))
	if _, err := comp.LowerGlobal("a"); err == nil {
		t.Fatal("expected an error")
	}
	for _, name := range []string{"a", "b"} {
		if _, ok := comp.Global(name); ok {
			t.Errorf("global %s resolved after a failure", name)
		}
	}
	if len(comp.Globals()) != 0 {
		t.Errorf("unexpected globals after a failure: %v", comp.Globals())
	}
	jit.fail = nil
	if _, err := comp.LowerGlobal("b"); err != nil {
		t.Fatalf("%+v", err)
	}
	var names []string
	for _, g := range comp.Globals() {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("unexpected globals after a retry (-want +got):\n%s", diff)
	}
}

func TestUnsupportedNodes(t *testing.T) {
	list := ir.NewDataType("List")
	nilCtor := list.AddConstructor("Nil")
	x := irb.Var("x", irb.F32())
	tests := []struct {
		name string
		expr ir.Expr
	}{
		{"nil", nil},
		{"bare-op", &ir.Op{Name: "add"}},
		{"bare-constructor", nilCtor},
		{"op-outside-primitive", irb.Elementwise("add", x, x)},
		{"unknown-global", irb.Apply(&ir.GlobalVar{Name: "missing", Typ: ir.Func(irb.F32(), irb.F32())}, x)},
		{"nested", irb.Tuple(x, &ir.Op{Name: "exp"})},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newCompiler(&fakeJIT{}).Lower(test.expr)
			var unsupported *aot.UnsupportedNodeError
			if !errors.As(err, &unsupported) {
				t.Errorf("got error %v but want an UnsupportedNodeError", err)
			}
		})
	}
}

func TestLowerADT(t *testing.T) {
	list := ir.NewDataType("List")
	nilCtor := list.AddConstructor("Nil")
	cons := list.AddConstructor("Cons", irb.F32(), list)
	add := irb.Primitive("add", irb.F32(), irb.F32())

	l := irb.Var("l", list)
	head := irb.Var("head", irb.F32())
	tail := irb.Var("tail", list)
	match := irb.Match(l,
		ir.Clause{Pattern: irb.PCtor(cons, irb.PVar(head), irb.PVar(tail)), Body: irb.Apply(add, head, head)},
		ir.Clause{Pattern: irb.PCtor(nilCtor), Body: irb.Scalar[float32](0)},
	)
	built := irb.Construct(cons, irb.Scalar[float32](1), irb.Construct(nilCtor))

	comp := newCompiler(&fakeJIT{})
	node, err := comp.Lower(irb.Tuple(match, built))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	tuple := node.(*lowered.Tuple)
	lmatch, ok := tuple.Fields[0].(*lowered.Match)
	if !ok {
		t.Fatalf("got %T but want a match", tuple.Fields[0])
	}
	if lmatch.Clauses[0].Pattern != match.Clauses[0].Pattern {
		t.Errorf("pattern has been rewritten")
	}
	if _, ok := lmatch.Clauses[0].Body.(*lowered.PackedCall); !ok {
		t.Errorf("got clause body %T but want a packed call", lmatch.Clauses[0].Body)
	}
	app, ok := tuple.Fields[1].(*lowered.ConstructorApp)
	if !ok {
		t.Fatalf("got %T but want a constructor application", tuple.Fields[1])
	}
	if app.Tag != 1 || app.Args[1].(*lowered.ConstructorApp).Tag != 0 {
		t.Errorf("unexpected constructor tags in %s", lowered.String(app))
	}
	if _, err := comp.Lower(irb.Construct(cons, irb.Scalar[float32](1))); err == nil {
		t.Errorf("expected an error when a constructor is applied with missing arguments")
	}
}
