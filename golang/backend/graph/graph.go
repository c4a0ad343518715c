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

// Package graph compiles primitive functions into graphs of Go native kernels.
package graph

import (
	"go/token"

	"github.com/gx-org/aot/golang/backend/kernels"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

// Graph of the Go native backend.
type Graph struct {
	plat     *platform.Platform
	funcName string

	numInputs int
	numShared int
}

// New graph running operations implemented in Go.
func New(plat *platform.Platform, funcName string) *Graph {
	return &Graph{
		plat:     plat,
		funcName: funcName,
	}
}

// Platform owning the graph.
func (g *Graph) Platform() *platform.Platform {
	return g.plat
}

type node struct {
	k  kernels.Factory
	sh *shape.Shape
}

func (g *Graph) node(sh *shape.Shape) (node, error) {
	factory, err := kernels.FactoryFor(sh.DType)
	if err != nil {
		return node{}, err
	}
	return node{sh: sh, k: factory}, nil
}

func (n *node) shape() *shape.Shape {
	return n.sh
}

func (n *node) kernelFactory() kernels.Factory {
	return n.k
}

type constant struct {
	node
	value kernels.Array
}

var _ execNode = (*constant)(nil)

// NewConstant returns a node representing a numerical constant value in the graph.
func (g *Graph) NewConstant(value kernels.Array) (execNode, error) {
	n, err := g.node(value.Shape())
	if err != nil {
		return nil, err
	}
	return &constant{node: n, value: value}, nil
}

func (n *constant) exec(*executor) (kernels.Array, error) {
	return n.value, nil
}

type binary struct {
	node
	x, y   execNode
	kernel kernels.Binary
}

var _ execNode = (*binary)(nil)

// NewBinary returns a node applying a binary operator between two nodes.
func (g *Graph) NewBinary(op token.Token, x, y execNode) (execNode, error) {
	kernel, sh, err := x.kernelFactory().BinaryOp(op, x.shape(), y.shape())
	if err != nil {
		return nil, err
	}
	n, err := g.node(sh)
	if err != nil {
		return nil, err
	}
	return &binary{node: n, x: x, y: y, kernel: kernel}, nil
}

func (n *binary) exec(exec *executor) (kernels.Array, error) {
	x, err := n.x.exec(exec)
	if err != nil {
		return nil, err
	}
	y, err := n.y.exec(exec)
	if err != nil {
		return nil, err
	}
	return n.kernel(x, y)
}

type unary struct {
	node
	x      execNode
	kernel kernels.Unary
}

var _ execNode = (*unary)(nil)

func (n *unary) exec(exec *executor) (kernels.Array, error) {
	x, err := n.x.exec(exec)
	if err != nil {
		return nil, err
	}
	return n.kernel(x)
}

// NewUnary returns a node applying a unary operator to a node.
func (g *Graph) NewUnary(op token.Token, x execNode) (execNode, error) {
	kernel, sh, err := x.kernelFactory().UnaryOp(op, x.shape())
	if err != nil {
		return nil, err
	}
	n, err := g.node(sh)
	if err != nil {
		return nil, err
	}
	return &unary{node: n, x: x, kernel: kernel}, nil
}

// NewCopy returns a node copying the value of another node.
func (g *Graph) NewCopy(x execNode) (execNode, error) {
	return &unary{
		node: node{sh: x.shape(), k: x.kernelFactory()},
		x:    x,
		kernel: func(a kernels.Array) (kernels.Array, error) {
			return a.Copy(), nil
		},
	}, nil
}

// shared is a node computed at most once per kernel call.
// Let-bound values are shared by all the nodes referring to them.
type shared struct {
	node
	x     execNode
	index int
}

var _ execNode = (*shared)(nil)

func (g *Graph) newShared(x execNode) execNode {
	n := &shared{
		node:  node{sh: x.shape(), k: x.kernelFactory()},
		x:     x,
		index: g.numShared,
	}
	g.numShared++
	return n
}

func (n *shared) exec(exec *executor) (kernels.Array, error) {
	if value := exec.shared[n.index]; value != nil {
		return value, nil
	}
	value, err := n.x.exec(exec)
	if err != nil {
		return nil, err
	}
	exec.shared[n.index] = value
	return value, nil
}

type argument struct {
	node
	name  string
	index int
}

var _ execNode = (*argument)(nil)

// Argument returns a node set by a caller when calling the kernel.
func (g *Graph) Argument(name string, sh *shape.Shape) (execNode, error) {
	n, err := g.node(sh)
	if err != nil {
		return nil, errors.Wrapf(err, "argument %s", name)
	}
	arg := &argument{node: n, name: name, index: g.numInputs}
	g.numInputs++
	return arg, nil
}

func (n *argument) exec(exec *executor) (kernels.Array, error) {
	return exec.args[n.index].Array(), nil
}
