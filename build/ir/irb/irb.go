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

// Package irb provides helpers to build typed source IR.
package irb

import (
	"fmt"

	"github.com/gx-org/aot/build/ir"
	"github.com/gx-org/backend/dtype"
)

// Var returns a new local variable.
func Var(name string, typ ir.Type) *ir.Var {
	return ir.NewVar(name, typ)
}

// F32 returns a float32 tensor type.
func F32(dims ...int) *ir.TensorType {
	return ir.Tensor(dtype.Float32, dims...)
}

// F64 returns a float64 tensor type.
func F64(dims ...int) *ir.TensorType {
	return ir.Tensor(dtype.Float64, dims...)
}

// I64 returns an int64 tensor type.
func I64(dims ...int) *ir.TensorType {
	return ir.Tensor(dtype.Int64, dims...)
}

// Bool returns a bool tensor type.
func Bool(dims ...int) *ir.TensorType {
	return ir.Tensor(dtype.Bool, dims...)
}

func dtypeOf(values any) (dtype.DataType, int) {
	switch valuesT := values.(type) {
	case []float32:
		return dtype.Float32, len(valuesT)
	case []float64:
		return dtype.Float64, len(valuesT)
	case []int32:
		return dtype.Int32, len(valuesT)
	case []int64:
		return dtype.Int64, len(valuesT)
	case []bool:
		return dtype.Bool, len(valuesT)
	}
	panic(fmt.Sprintf("cannot build a constant from %T", values))
}

// Const returns a constant tensor given its values and axis lengths.
// It panics if the values are not a slice of a supported Go type.
func Const(values any, dims ...int) *ir.Constant {
	dt, size := dtypeOf(values)
	typ := ir.Tensor(dt, dims...)
	if typ.Shape.Size() != size {
		panic(fmt.Sprintf("%d values for a constant of type %s", size, typ.String()))
	}
	return &ir.Constant{Typ: typ, Values: values}
}

// Scalar returns a scalar constant.
func Scalar[T float32 | float64 | int32 | int64 | bool](v T) *ir.Constant {
	return Const([]T{v})
}

// Op calls a backend operator.
func Op(name string, result ir.Type, args ...ir.Expr) *ir.Call {
	return &ir.Call{Callee: &ir.Op{Name: name}, Args: args, Typ: result}
}

// Elementwise calls a backend operator which result has the type of its first argument.
func Elementwise(name string, args ...ir.Expr) *ir.Call {
	return Op(name, args[0].Type(), args...)
}

// Apply calls a function-typed expression.
// The type of the call is the result type of the callee.
func Apply(callee ir.Expr, args ...ir.Expr) *ir.Call {
	var result ir.Type
	if ft, ok := callee.Type().(*ir.FuncType); ok {
		result = ft.Result
	}
	return &ir.Call{Callee: callee, Args: args, Typ: result}
}

// Let binds a value to a variable of the same type.
func Let(name string, value ir.Expr, body func(*ir.Var) ir.Expr) *ir.Let {
	v := ir.NewVar(name, value.Type())
	return &ir.Let{Var: v, Value: value, Body: body(v)}
}

// Primitive returns a primitive function calling a single operator on its parameters.
// The result type is the type of the first parameter.
func Primitive(op string, params ...ir.Type) *ir.Function {
	vars := make([]*ir.Var, len(params))
	args := make([]ir.Expr, len(params))
	for i, p := range params {
		vars[i] = ir.NewVar(fmt.Sprintf("p%d", i), p)
		args[i] = vars[i]
	}
	return ir.NewPrimitiveFunction(vars, Op(op, params[0], args...), params[0])
}

// Function returns a non-primitive function with the body built from its parameters.
func Function(params []*ir.Var, ret ir.Type, body func(...*ir.Var) ir.Expr) *ir.Function {
	return ir.NewFunction(params, body(params...), ret)
}

// Tuple groups expressions.
func Tuple(fields ...ir.Expr) *ir.Tuple {
	return ir.NewTuple(fields...)
}

// If returns a conditional expression with the type of its then branch.
func If(cond, then, els ir.Expr) *ir.If {
	return &ir.If{Cond: cond, Then: then, Else: els, Typ: then.Type()}
}

// Match returns a match expression with the type of the body of its first clause.
func Match(data ir.Expr, clauses ...ir.Clause) *ir.Match {
	var typ ir.Type
	if len(clauses) > 0 {
		typ = clauses[0].Body.Type()
	}
	return &ir.Match{Data: data, Clauses: clauses, Typ: typ}
}

// Construct applies a constructor to arguments.
func Construct(ctor *ir.Constructor, args ...ir.Expr) *ir.Call {
	return &ir.Call{Callee: ctor, Args: args, Typ: ctor.Data}
}

// PCtor returns a constructor pattern.
func PCtor(ctor *ir.Constructor, fields ...ir.Pattern) *ir.PatternConstructor {
	return &ir.PatternConstructor{Constructor: ctor, Fields: fields}
}

// PVar returns a pattern binding a variable.
func PVar(v *ir.Var) *ir.PatternVar {
	return &ir.PatternVar{Var: v}
}

// PWildcard returns a pattern matching anything.
func PWildcard() *ir.PatternWildcard {
	return &ir.PatternWildcard{}
}
