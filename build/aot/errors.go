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

package aot

import (
	"fmt"

	"github.com/gx-org/aot/build/ir"
)

type (
	// TypeShapeError is returned when the arguments of a call to a primitive
	// function match neither the flat nor the spread calling convention.
	// It signals a defect in the upstream type inference.
	TypeShapeError struct {
		Expr   ir.Expr
		Reason string
	}

	// UnsupportedNodeError is returned when a node has no lowering rule.
	UnsupportedNodeError struct {
		Node   ir.Expr
		Reason string
	}

	// KernelCompilationError is returned when a backend fails to compile
	// a primitive function into a kernel.
	KernelCompilationError struct {
		Kernel string
		Err    error
	}
)

func (err *TypeShapeError) Error() string {
	return fmt.Sprintf("invalid arguments in call %s: %s", ir.String(err.Expr), err.Reason)
}

func (err *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("cannot lower %T %s: %s", err.Node, ir.String(err.Node), err.Reason)
}

func (err *KernelCompilationError) Error() string {
	return fmt.Sprintf("cannot compile kernel %s: %v", err.Kernel, err.Err)
}

// Unwrap returns the error returned by the backend.
func (err *KernelCompilationError) Unwrap() error { return err.Err }

func unsupportedf(node ir.Expr, format string, a ...any) error {
	return &UnsupportedNodeError{Node: node, Reason: fmt.Sprintf(format, a...)}
}

func typeShapef(expr ir.Expr, format string, a ...any) error {
	return &TypeShapeError{Expr: expr, Reason: fmt.Sprintf(format, a...)}
}
