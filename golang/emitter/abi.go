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
	"slices"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// emitABI declares the native symbols of a program in LLVM assembly.
//
// A kernel of arity n is declared as a function taking n opaque pointers, the
// last one being the output slot. The entry point takes the captured
// parameters followed by the inputs and returns an opaque pointer on the result.
func emitABI(entry string, numParams, numInputs int, kernels map[string]int) (string, error) {
	if entry == "" {
		return "", errors.Errorf("entry point without a name")
	}
	m := ir.NewModule()
	m.SourceFilename = entry
	names := maps.Keys(kernels)
	slices.Sort(names)
	for _, name := range names {
		params := make([]*ir.Param, kernels[name])
		for i := range params {
			params[i] = ir.NewParam("", types.I8Ptr)
		}
		m.NewFunc(name, types.Void, params...)
	}
	params := make([]*ir.Param, 0, numParams+numInputs)
	for range numParams {
		params = append(params, ir.NewParam("", types.I8Ptr))
	}
	for range numInputs {
		params = append(params, ir.NewParam("", types.I8Ptr))
	}
	m.NewFunc(entry, types.I8Ptr, params...)
	return m.String(), nil
}
