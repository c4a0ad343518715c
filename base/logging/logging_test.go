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

package logging_test

import (
	"strings"
	"testing"

	"github.com/gx-org/aot/base/logging"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"silent", "error", "warning", "info", "debug"} {
		level, err := logging.ParseLevel(name)
		if err != nil {
			t.Errorf("cannot parse %q: %v", name, err)
			continue
		}
		if level.String() != name {
			t.Errorf("got %s but want %s", level.String(), name)
		}
	}
	if _, err := logging.ParseLevel("verbose"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level logging.Level
		want  []string
		skip  []string
	}{
		{
			level: logging.LevelSilent,
			skip:  []string{"dbg", "inf", "wrn", "err"},
		},
		{
			level: logging.LevelWarning,
			want:  []string{"wrn 2", "err 3"},
			skip:  []string{"dbg", "inf"},
		},
		{
			level: logging.LevelDebug,
			want:  []string{"dbg 0", "inf 1", "wrn 2", "err 3"},
		},
	}
	for ti, test := range tests {
		var buf strings.Builder
		log := logging.NewPlain(&buf, test.level)
		log.Debugf("dbg %d", 0)
		log.Infof("inf %d", 1)
		log.Warnf("wrn %d", 2)
		log.Errorf("err %d", 3)
		got := buf.String()
		for _, want := range test.want {
			if !strings.Contains(got, want) {
				t.Errorf("test %d: output %q does not contain %q", ti, got, want)
			}
		}
		for _, skip := range test.skip {
			if strings.Contains(got, skip) {
				t.Errorf("test %d: output %q contains %q", ti, got, skip)
			}
		}
	}
}

func TestDiscard(t *testing.T) {
	log := logging.Discard()
	if log.Enabled(logging.LevelError) {
		t.Errorf("discard logger should not be enabled")
	}
	log.Errorf("nothing")
}
