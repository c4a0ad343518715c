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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/aot/api/config"
	"github.com/gx-org/aot/base/logging"
)

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		src  string
		want *config.Config
	}{
		{
			desc: "empty",
			src:  "",
			want: config.Default(),
		},
		{
			desc: "compiler",
			src: `
[compiler]
log_level = "debug"
share_registry = true
`,
			want: &config.Config{
				LogLevel:      logging.LevelDebug,
				ShareRegistry: true,
				Build:         config.Build{Timeout: 2 * time.Minute},
			},
		},
		{
			desc: "build",
			src: `
[build]
command = ["go", "vet", "./..."]
timeout = "30s"
work_dir = "/tmp/aot"
keep_source = true
`,
			want: &config.Config{
				LogLevel: logging.LevelWarning,
				Build: config.Build{
					Command:    []string{"go", "vet", "./..."},
					Timeout:    30 * time.Second,
					WorkDir:    "/tmp/aot",
					KeepSource: true,
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := config.Parse([]byte(test.src))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected configuration (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		desc string
		src  string
	}{
		{desc: "syntax", src: "[compiler"},
		{desc: "level", src: "[compiler]\nlog_level = \"loud\""},
		{desc: "timeout", src: "[build]\ntimeout = \"soon\""},
		{desc: "negative timeout", src: "[build]\ntimeout = \"-1s\""},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if _, err := config.Parse([]byte(test.src)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := &config.Config{
		LogLevel:      logging.LevelInfo,
		ShareRegistry: true,
		Build: config.Build{
			Command: []string{"true"},
			Timeout: 90 * time.Second,
			WorkDir: "out",
		},
	}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := config.Parse(data)
	if err != nil {
		t.Fatalf("%+v\n%s", err, data)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("configuration changed after a round trip (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aot.toml")
	if err := os.WriteFile(path, []byte("[build]\ntimeout = \"1m\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if cfg.Build.Timeout != time.Minute {
		t.Errorf("got timeout %s but want 1m", cfg.Build.Timeout)
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	tc := cfg.Toolchain(nil, logging.Discard())
	if tc.Timeout != time.Minute {
		t.Errorf("got toolchain timeout %s but want 1m", tc.Timeout)
	}
}
