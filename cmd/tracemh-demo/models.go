package main

import (
	"fmt"

	"github.com/probmc/tracemh/internal/config"
	"github.com/probmc/tracemh/trace"
)

// buildModel resolves a config.ModelConfig to a trace.Program. The three
// built-in models mirror the chain_test.go scenarios: a single biased coin, a
// Gaussian with a Gaussian likelihood, and a two-mode control-flow switch.
func buildModel(mc config.ModelConfig) (trace.Program, error) {
	switch mc.Name {
	case "biased-coin":
		p := mc.Params["p"]
		if p <= 0 || p >= 1 {
			p = 0.3
		}
		return func(args interface{}) interface{} {
			trace.PushAddress(1)
			b := trace.Flip(p)
			trace.PopAddress()
			return b
		}, nil

	case "gaussian-posterior":
		mu := mc.Params["likelihood_mu"]
		sigma := mc.Params["likelihood_sigma"]
		if sigma <= 0 {
			sigma = 1
		}
		return func(args interface{}) interface{} {
			trace.PushAddress(1)
			x := trace.Gaussian(0, 1)
			trace.PopAddress()
			trace.Factor(-0.5 * (x - mu) * (x - mu) / (sigma * sigma))
			return x
		}, nil

	case "bimodal":
		sep := mc.Params["separation"]
		if sep <= 0 {
			sep = 10
		}
		return func(args interface{}) interface{} {
			trace.PushAddress(1)
			b := trace.Flip(0.5)
			trace.PopAddress()
			if b {
				trace.PushAddress(2)
				defer trace.PopAddress()
				x := trace.Gaussian(sep, 0.3)
				trace.Factor(-0.5 * (x - sep) * (x - sep) / 0.09)
				return x
			}
			trace.PushAddress(3)
			defer trace.PopAddress()
			x := trace.Gaussian(-sep, 0.3)
			trace.Factor(-0.5 * (x + sep) * (x + sep) / 0.09)
			return x
		}, nil
	}
	return nil, fmt.Errorf("unknown model %q", mc.Name)
}
