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

// Package aotc compiles networks of the zoo and measures their latency.
package aotc

import (
	"context"
	"io"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gx-org/aot/api"
	"github.com/gx-org/aot/api/config"
	"github.com/gx-org/aot/api/options"
	"github.com/gx-org/aot/api/trace"
	"github.com/gx-org/aot/base/logging"
	"github.com/gx-org/aot/build/aot"
	"github.com/gx-org/aot/examples/zoo"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Options of a run.
type Options struct {
	// Networks to compile. All the networks of the zoo are compiled if empty.
	Networks []string
	// Iterations is the number of calls averaged to measure the latency.
	Iterations int
	// Config of the compiler.
	Config *config.Config
	// Log of the compiler.
	Log *logging.Logger
	// Trace is called after each call to an entry point.
	Trace trace.Callback
}

// Result of a network.
type Result struct {
	Name string
	// Compile is the time to lower, emit, and link the network.
	Compile time.Duration
	// Latency is the average duration of a call.
	Latency time.Duration
	// Kernels is the number of distinct kernels called by the network.
	Kernels int
}

func selectNetworks(names []string) ([]zoo.Network, error) {
	if len(names) == 0 {
		return zoo.Networks(), nil
	}
	nets := make([]zoo.Network, len(names))
	for i, name := range names {
		net, ok := zoo.Lookup(name)
		if !ok {
			return nil, errors.Errorf("network %q not found in the zoo", name)
		}
		nets[i] = net
	}
	return nets, nil
}

func runNetwork(ctx context.Context, net zoo.Network, iterations int, opts []options.Option) (*Result, error) {
	mod, expr, err := net.Build()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	comp, err := api.Compile(ctx, mod, expr, net.Name, opts...)
	if err != nil {
		return nil, err
	}
	res := &Result{Name: net.Name, Compile: time.Since(start), Kernels: len(comp.Source.Kernels)}
	args := net.Args()
	got, err := comp.Func.CallGo(args...)
	if err != nil {
		return nil, err
	}
	if diff := cmp.Diff(net.Want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		return nil, errors.Errorf("unexpected result (-want +got):\n%s", diff)
	}
	start = time.Now()
	for range iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := comp.Func.Call(args...); err != nil {
			return nil, err
		}
	}
	res.Latency = time.Since(start) / time.Duration(iterations)
	return res, nil
}

// Run compiles and times networks.
// A failing network does not prevent the others from running:
// all the errors are returned together with the results of the networks that succeeded.
func Run(ctx context.Context, o Options) ([]*Result, error) {
	if o.Iterations <= 0 {
		return nil, errors.Errorf("invalid number of iterations: %d", o.Iterations)
	}
	nets, err := selectNetworks(o.Networks)
	if err != nil {
		return nil, err
	}
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := o.Log
	if log == nil {
		log = cfg.Logger()
	}
	reg := aot.NewRegistry()
	if cfg.ShareRegistry {
		reg = aot.ProcessRegistry()
	}
	opts := []options.Option{
		options.WithConfig(cfg),
		options.WithLogger(log),
		options.WithRegistry(reg),
	}
	if o.Trace != nil {
		opts = append(opts, options.WithTrace(o.Trace))
	}
	var results []*Result
	var errs error
	for _, net := range nets {
		res, err := runNetwork(ctx, net, o.Iterations, opts)
		if err != nil {
			log.Errorf("%s: %v", net.Name, err)
			errs = multierr.Append(errs, errors.Wrapf(err, "network %s", net.Name))
			continue
		}
		log.Infof("%s: compiled in %s, %s per call", res.Name, res.Compile, res.Latency)
		results = append(results, res)
	}
	return results, errs
}

// WriteTOML writes the latency of each network in seconds.
func WriteTOML(w io.Writer, results []*Result) error {
	latencies := make(map[string]any, len(results))
	for _, res := range results {
		latencies[res.Name] = res.Latency.Seconds()
	}
	tree, err := toml.TreeFromMap(latencies)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = tree.WriteTo(w)
	return errors.WithStack(err)
}

// ReadTOML reads latencies written by WriteTOML.
func ReadTOML(r io.Reader) (map[string]float64, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	latencies := make(map[string]float64)
	for _, key := range tree.Keys() {
		seconds, ok := tree.Get(key).(float64)
		if !ok {
			return nil, errors.Errorf("latency of %s is not a number: %v", key, tree.Get(key))
		}
		latencies[key] = seconds
	}
	return latencies, nil
}
