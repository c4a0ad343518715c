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

// Package trace is the API to observe calls to compiled entry points.
package trace

import (
	"time"

	"github.com/gx-org/aot/api/values"
)

type (
	// Callback is called after an entry point has returned.
	Callback interface {
		Trace(name string, args []values.Value, out values.Value, elapsed time.Duration) error
	}

	// CallbackFunc adapts a function into a callback.
	CallbackFunc func(name string, args []values.Value, out values.Value, elapsed time.Duration) error
)

// Trace calls the function.
func (f CallbackFunc) Trace(name string, args []values.Value, out values.Value, elapsed time.Duration) error {
	return f(name, args, out, elapsed)
}
