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

// Package fmtarray formats arrays into string.
package fmtarray

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the type of the elements of an array.
type Value interface {
	bool | float32 | float64 | int32 | int64
}

const tab = "\t"

func format[T Value](x T) string {
	switch xT := any(x).(type) {
	case float32:
		return strconv.FormatFloat(float64(xT), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(xT, 'g', -1, 64)
	}
	return fmt.Sprint(x)
}

func typeName[T Value](dims []int) string {
	var b strings.Builder
	for _, d := range dims {
		fmt.Fprintf(&b, "[%d]", d)
	}
	var zero T
	fmt.Fprintf(&b, "%T", zero)
	return b.String()
}

// block writes the values of an array with at least one axis.
// Arrays of rank 2 or more are written one sub-array per line.
func block[T Value](b *strings.Builder, data []T, dims []int, indent string) {
	if len(dims) == 1 {
		vals := make([]string, len(data))
		for i, x := range data {
			vals[i] = format(x)
		}
		b.WriteString("{" + strings.Join(vals, ", ") + "}")
		return
	}
	stride := len(data) / max(dims[0], 1)
	b.WriteString("{\n")
	for i := range dims[0] {
		b.WriteString(indent + tab)
		block(b, data[i*stride:(i+1)*stride], dims[1:], indent+tab)
		b.WriteString(",\n")
	}
	b.WriteString(indent + "}")
}

func size(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// SprintValues returns a string representation of the content of an array without its type.
func SprintValues[T Value](data []T, dims []int) string {
	if n := size(dims); n != len(data) {
		return fmt.Sprintf("%d value(s) do not match axes %v of size %d", len(data), dims, n)
	}
	if len(dims) == 0 {
		return "(" + format(data[0]) + ")"
	}
	var b strings.Builder
	block(&b, data, dims, "")
	return b.String()
}

// Sprint returns a string representation of an array, including its type.
func Sprint[T Value](data []T, dims []int) string {
	return typeName[T](dims) + SprintValues(data, dims)
}
