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

package graph

import (
	"go/token"
	"math"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func relu(x float64) float64 {
	return math.Max(x, 0)
}

// NewMath returns a node applying a function from the math package.
func (g *Graph) NewMath(x execNode, f func(float64) float64) (execNode, error) {
	mth := x.kernelFactory().Math()
	if mth == nil {
		return nil, errors.Errorf("math functions not supported for %s", x.shape().String())
	}
	return &unary{
		node:   node{sh: x.shape(), k: x.kernelFactory()},
		x:      x,
		kernel: mth.Kernelize(f),
	}, nil
}

type opBuilder func(g *Graph, args []execNode) (execNode, error)

func binaryOp(op token.Token) opBuilder {
	return func(g *Graph, args []execNode) (execNode, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("binary operator %s called with %d argument(s)", op, len(args))
		}
		return g.NewBinary(op, args[0], args[1])
	}
}

func unaryBuilder(build func(g *Graph, x execNode) (execNode, error)) opBuilder {
	return func(g *Graph, args []execNode) (execNode, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("unary operator called with %d argument(s)", len(args))
		}
		return build(g, args[0])
	}
}

func mathOp(f func(float64) float64) opBuilder {
	return unaryBuilder(func(g *Graph, x execNode) (execNode, error) {
		return g.NewMath(x, f)
	})
}

var builders = map[string]opBuilder{
	"add":      binaryOp(token.ADD),
	"subtract": binaryOp(token.SUB),
	"multiply": binaryOp(token.MUL),
	"divide":   binaryOp(token.QUO),
	"equal":    binaryOp(token.EQL),
	"less":     binaryOp(token.LSS),
	"greater":  binaryOp(token.GTR),
	"negative": unaryBuilder(func(g *Graph, x execNode) (execNode, error) {
		return g.NewUnary(token.SUB, x)
	}),
	"copy":    unaryBuilder((*Graph).NewCopy),
	"exp":     mathOp(math.Exp),
	"log":     mathOp(math.Log),
	"tanh":    mathOp(math.Tanh),
	"sqrt":    mathOp(math.Sqrt),
	"sigmoid": mathOp(sigmoid),
	"relu":    mathOp(relu),
}

// Ops returns the names of the operators supported by the Go native backend.
func Ops() []string {
	names := maps.Keys(builders)
	slices.Sort(names)
	return names
}
