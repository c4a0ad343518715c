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

// Utility aotc compiles networks of the zoo ahead of time and reports their latency.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/gx-org/aot/api/config"
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/golang"
	"github.com/gx-org/aot/tools/aotc"
	"github.com/gx-org/aot/tools/aotflag"
	"github.com/pterm/pterm"
	"go.uber.org/multierr"
)

var (
	configPath = flag.String("config", "", "TOML configuration file of the compiler")
	output     = flag.String("output", "latency.toml", "TOML file where the latency of each network is written")
	iterations = flag.Int("iterations", 100, "number of calls averaged to measure the latency")
	logLevel   = flag.String("log_level", "", "log level overriding the configuration (silent, error, warning, info, debug)")
	traceCalls = flag.Bool("trace", false, "log every call to the networks at the info level")
	networks   = aotflag.StringList("networks", "comma separated list of networks to compile (default: all)")
)

func exit(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	if *logLevel != "" {
		level, err := logging.ParseLevel(*logLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

func writeResults(path string, results []*aotc.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return aotc.WriteTOML(f, results)
}

func printTable(results []*aotc.Result) error {
	data := pterm.TableData{{"network", "kernels", "compile", "latency"}}
	for _, res := range results {
		data = append(data, []string{res.Name, strconv.Itoa(res.Kernels), res.Compile.String(), res.Latency.String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func main() {
	flag.Parse()
	cfg, err := loadConfig()
	if err != nil {
		exit("cannot load configuration: %+v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log := cfg.Logger()
	opts := aotc.Options{
		Networks:   *networks,
		Iterations: *iterations,
		Config:     cfg,
		Log:        log,
	}
	if *traceCalls {
		opts.Trace = golang.Tracer{Log: log}
	}
	results, runErr := aotc.Run(ctx, opts)
	if len(results) > 0 {
		if err := printTable(results); err != nil {
			exit("cannot print results: %v", err)
		}
		if err := writeResults(*output, results); err != nil {
			exit("cannot write %s: %v", *output, err)
		}
	}
	if runErr != nil {
		exit("%+v", runErr)
	}
}
