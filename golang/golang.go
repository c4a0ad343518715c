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

// Package golang provides everything required to run compiled programs from Go.
//
// This includes the Go native backend, the runtime of emitted programs,
// and the emitter.
package golang

import (
	"strings"
	"time"

	"github.com/gx-org/aot/api/trace"
	"github.com/gx-org/aot/api/values"
	"github.com/gx-org/aot/base/logging"
)

// Tracer is a default tracer logging calls to entry points.
type Tracer struct {
	Log *logging.Logger
}

var _ trace.Callback = (*Tracer)(nil)

// Trace logs the arguments, the result, and the duration of a call at the info level.
func (tr Tracer) Trace(name string, args []values.Value, out values.Value, elapsed time.Duration) error {
	if !tr.Log.Enabled(logging.LevelInfo) {
		return nil
	}
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.String()
	}
	tr.Log.Infof("%s(%s) = %s [%s]", name, strings.Join(strs, ", "), out.String(), elapsed)
	return nil
}
