package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/probmc/tracemh/infer"
	"github.com/probmc/tracemh/internal/config"
	"github.com/probmc/tracemh/mh"
	"github.com/probmc/tracemh/trace"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the configured model through the configured sampler",
	RunE:  runSampler,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "build the model and take one rejection sample, then exit")
}

func newLogger(cfg config.LoggingConfig, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	} else if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	var w zerolog.ConsoleWriter
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func runSampler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, verbose)

	program, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	rng := rand.New(rand.NewSource(cfg.Sampler.Seed))

	if dryRun {
		tr, err := infer.RejectionSample(program, nil, rng)
		if err != nil {
			return fmt.Errorf("rejection sample: %w", err)
		}
		logger.Info().
			Interface("returnValue", tr.ReturnValue()).
			Float64("logposterior", tr.Logposterior()).
			Msg("dry-run: rejection sample")
		return nil
	}

	switch cfg.Sampler.Mode {
	case "mh":
		return runMH(program, cfg.Sampler, rng, logger)
	case "pt":
		return runMHPT(program, cfg.Sampler, rng, logger)
	default:
		return fmt.Errorf("unknown sampler mode %q", cfg.Sampler.Mode)
	}
}

func runMH(program trace.Program, sc config.SamplerConfig, rng *rand.Rand, logger zerolog.Logger) error {
	opts := mh.DefaultOptions()
	opts.NSamples = sc.NSamples
	opts.Lag = sc.Lag
	opts.TimeBudget = sc.TimeBudget
	opts.Temp = sc.Temp
	opts.DepthBiasedVarSelect = sc.DepthBiasedVarSelect
	opts.Verbose = true
	opts.Logger = logger

	count := 0
	opts.OnSample = func(tr *trace.Trace) {
		count++
		logger.Debug().Int("sample", count).Interface("value", tr.ReturnValue()).Msg("sample")
	}

	res, err := mh.MH(program, nil, rng, opts)
	if err != nil {
		return err
	}
	logger.Info().
		Int64("proposed", res.Proposed).
		Int64("accepted", res.Accepted).
		Float64("acceptanceRatio", res.AcceptanceRatio()).
		Msg("mh complete")
	return nil
}

func runMHPT(program trace.Program, sc config.SamplerConfig, rng *rand.Rand, logger zerolog.Logger) error {
	opts := mh.DefaultPTOptions()
	opts.NSamples = sc.NSamples
	opts.Lag = sc.Lag
	opts.TimeBudget = sc.TimeBudget
	opts.DepthBiasedVarSelect = sc.DepthBiasedVarSelect
	opts.Temps = sc.Temps
	if sc.TempSwapInterval > 0 {
		opts.TempSwapInterval = sc.TempSwapInterval
	}
	opts.Verbose = true
	opts.Logger = logger

	count := 0
	opts.OnSample = func(chainIndex int, temp float64, tr *trace.Trace) {
		if temp != 1 {
			return
		}
		count++
		logger.Debug().Int("sample", count).Int("chainIndex", chainIndex).Interface("value", tr.ReturnValue()).Msg("sample")
	}

	res, err := mh.MHPT(program, nil, rng, opts)
	if err != nil {
		return err
	}
	logger.Info().
		Int64("proposed", res.Proposed).
		Int64("accepted", res.Accepted).
		Float64("acceptanceRatio", res.AcceptanceRatio()).
		Msg("mhpt complete")
	return nil
}
