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

// Package config loads the configuration of the compiler from TOML.
//
// Example:
//
//	[compiler]
//	log_level = "debug"
//	share_registry = true
//
//	[build]
//	command = ["go", "vet", "./..."]
//	timeout = "30s"
//	work_dir = "/tmp/aot"
//	keep_source = true
package config

import (
	"os"
	"time"

	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/golang/backend/platform"
	"github.com/gx-org/aot/golang/emitter"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type (
	tomlFile struct {
		Compiler *tomlCompiler `toml:"compiler"`
		Build    *tomlBuild    `toml:"build"`
	}

	tomlCompiler struct {
		LogLevel      string `toml:"log_level,omitempty"`
		ShareRegistry bool   `toml:"share_registry"`
	}

	tomlBuild struct {
		Command    []string `toml:"command,omitempty"`
		Timeout    string   `toml:"timeout,omitempty"`
		WorkDir    string   `toml:"work_dir,omitempty"`
		KeepSource bool     `toml:"keep_source"`
	}
)

type (
	// Config of the compiler.
	Config struct {
		// LogLevel of the compiler logger.
		LogLevel logging.Level
		// ShareRegistry reuses the process-wide kernel registry across compilations.
		ShareRegistry bool
		// Build configures the native toolchain.
		Build Build
	}

	// Build configures the external build of emitted programs.
	Build struct {
		// Command run in the work directory. Nothing is built if empty.
		Command []string
		// Timeout of the build command.
		Timeout time.Duration
		// WorkDir in which the emitted source is written.
		WorkDir string
		// KeepSource keeps the emitted source after the build.
		KeepSource bool
	}
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: logging.LevelWarning,
		Build: Build{
			Timeout: emitter.DefaultTimeout,
		},
	}
}

// Parse a TOML configuration.
// Fields absent from the input keep their default value.
func Parse(data []byte) (*Config, error) {
	tf := &tomlFile{}
	if err := toml.Unmarshal(data, tf); err != nil {
		return nil, errors.Wrap(err, "cannot parse configuration")
	}
	cfg := Default()
	if tc := tf.Compiler; tc != nil {
		if tc.LogLevel != "" {
			level, err := logging.ParseLevel(tc.LogLevel)
			if err != nil {
				return nil, errors.Wrap(err, "compiler.log_level")
			}
			cfg.LogLevel = level
		}
		cfg.ShareRegistry = tc.ShareRegistry
	}
	if tb := tf.Build; tb != nil {
		cfg.Build.Command = tb.Command
		cfg.Build.WorkDir = tb.WorkDir
		cfg.Build.KeepSource = tb.KeepSource
		if tb.Timeout != "" {
			timeout, err := time.ParseDuration(tb.Timeout)
			if err != nil {
				return nil, errors.Wrap(err, "build.timeout")
			}
			if timeout <= 0 {
				return nil, errors.Errorf("build.timeout: %s is not a positive duration", tb.Timeout)
			}
			cfg.Build.Timeout = timeout
		}
	}
	return cfg, nil
}

// Load a configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Marshal the configuration into TOML.
func (cfg *Config) Marshal() ([]byte, error) {
	tf := &tomlFile{
		Compiler: &tomlCompiler{
			LogLevel:      cfg.LogLevel.String(),
			ShareRegistry: cfg.ShareRegistry,
		},
		Build: &tomlBuild{
			Command:    cfg.Build.Command,
			Timeout:    cfg.Build.Timeout.String(),
			WorkDir:    cfg.Build.WorkDir,
			KeepSource: cfg.Build.KeepSource,
		},
	}
	return toml.Marshal(tf)
}

// Logger returns a logger writing to the standard error at the configured level.
func (cfg *Config) Logger() *logging.Logger {
	return logging.Stderr(cfg.LogLevel)
}

// Toolchain returns the linker building emitted programs with the configured command.
func (cfg *Config) Toolchain(dev *platform.Device, log *logging.Logger) *emitter.Toolchain {
	return &emitter.Toolchain{
		Command:    cfg.Build.Command,
		Timeout:    cfg.Build.Timeout,
		WorkDir:    cfg.Build.WorkDir,
		KeepSource: cfg.Build.KeepSource,
		Device:     dev,
		Log:        log,
	}
}
