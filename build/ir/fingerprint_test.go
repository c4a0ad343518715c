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

package ir_test

import (
	"strings"
	"testing"

	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/aot/build/ir/irb"
)

func addMul(xName, yName string, typ ir.Type) *ir.Function {
	x := irb.Var(xName, typ)
	y := irb.Var(yName, typ)
	body := irb.Let("s", irb.Elementwise("add", x, y), func(s *ir.Var) ir.Expr {
		return irb.Elementwise("multiply", s, x)
	})
	return ir.NewPrimitiveFunction([]*ir.Var{x, y}, body, typ)
}

func mustFingerprint(t *testing.T, fn *ir.Function) ir.Fingerprint {
	t.Helper()
	fp, err := ir.FingerprintOf(fn)
	if err != nil {
		t.Fatalf("cannot fingerprint %s: %+v", ir.String(fn), err)
	}
	return fp
}

func TestFingerprintAlphaEquivalence(t *testing.T) {
	a := mustFingerprint(t, addMul("x", "y", irb.F32(2)))
	b := mustFingerprint(t, addMul("u", "v", irb.F32(2)))
	if a.Encoding != b.Encoding {
		t.Errorf("encodings differ:\n%s\n%s", a.Encoding, b.Encoding)
	}
	if a.KernelName() != b.KernelName() {
		t.Errorf("kernel names differ: %s != %s", a.KernelName(), b.KernelName())
	}
	if !strings.HasPrefix(a.KernelName(), "op") || len(a.KernelName()) != 18 {
		t.Errorf("unexpected kernel name %q", a.KernelName())
	}
}

func TestFingerprintDistinct(t *testing.T) {
	x := irb.Var("x", irb.F32())
	y := irb.Var("y", irb.F32())
	fns := map[string]*ir.Function{
		"add":         irb.Primitive("add", irb.F32(), irb.F32()),
		"mul":         irb.Primitive("multiply", irb.F32(), irb.F32()),
		"add-f64":     irb.Primitive("add", irb.F64(), irb.F64()),
		"add-vector":  irb.Primitive("add", irb.F32(3), irb.F32(3)),
		"addmul":      addMul("x", "y", irb.F32()),
		"swapped":     ir.NewPrimitiveFunction([]*ir.Var{x, y}, irb.Elementwise("add", y, x), irb.F32()),
		"non-prim":    ir.NewFunction([]*ir.Var{x, y}, irb.Elementwise("add", x, y), irb.F32()),
		"const-one":   ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Elementwise("add", x, irb.Scalar[float32](1)), irb.F32()),
		"const-two":   ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Elementwise("add", x, irb.Scalar[float32](2)), irb.F32()),
		"const-twoes": ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Elementwise("add", x, irb.Const([]float32{2, 2}, 2)), irb.F32(2)),
	}
	seen := make(map[string]string)
	for name, fn := range fns {
		fp := mustFingerprint(t, fn)
		if other, ok := seen[fp.Encoding]; ok {
			t.Errorf("%s and %s have the same encoding %s", name, other, fp.Encoding)
		}
		seen[fp.Encoding] = name
	}
}

func TestFingerprintUnboundVariable(t *testing.T) {
	x := irb.Var("x", irb.F32())
	free := irb.Var("free", irb.F32())
	fn := ir.NewPrimitiveFunction([]*ir.Var{x}, irb.Elementwise("add", x, free), irb.F32())
	if _, err := ir.FingerprintOf(fn); err == nil {
		t.Errorf("expected an error for an unbound variable")
	}
}
