package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lattice-mc/lattice-mc/mc"
	"github.com/lattice-mc/lattice-mc/mc/ising"
)

var (
	// CLI flags for run setup
	seed     int64  // Seed for the run's random source
	logLevel string // Log verbosity level

	// Lattice and model configs
	rows      int       // Lattice rows
	cols      int       // Lattice columns
	fillValue int       // Initial occupant value on every site (+1 or -1)
	coupling  float64   // Nearest-neighbor coupling constant J
	ensemble  string    // Event generator: "flip" (semi-grand canonical) or "swap" (canonical)
	tempK     float64   // Temperature in K
	mu        []float64 // Exchange potential vector

	// Sampling and completion configs
	samplePeriod    int64   // Sample period (in passes or attempts, per sample-mode)
	sampleMode      string  // "pass" or "step"
	minSample       int64   // Minimum number of samples before completion
	maxSample       int64   // Maximum number of samples (0 = unlimited)
	checkBegin      float64 // Sample count of the first completion check
	checkPeriod     float64 // Spacing between completion checks
	checkSpacing    string  // "linear" or "log"
	confidence      float64 // Confidence level for calculated precision
	absPrecision    float64 // Absolute precision requested on converged quantities
	convergeNames   []string
	completionFile  string  // Optional YAML completion config, overrides the flags above
	outputFile      string  // Results JSON path ("" = stdout)
	statusFrequency float64 // Seconds between progress reports (0 = silent)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lattice-mc",
	Short: "Monte Carlo engine for lattice occupation models",
}

// runCmd executes one Monte Carlo run using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a semi-grand canonical Ising Monte Carlo calculation",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		params, samplingConfig, err := buildCompletionParams()
		if err != nil {
			return err
		}

		configuration, err := ising.NewConfiguration(rows, cols, fillValue)
		if err != nil {
			return err
		}
		conditions, err := ising.NewSemiGrandCanonicalConditions(tempK, mu)
		if err != nil {
			return err
		}
		state := mc.NewState(configuration, conditions)

		potential := ising.NewSemiGrandCanonicalPotential(
			ising.NewFormationEnergy(coupling),
			ising.NewComposition(),
		)

		var generator mc.OccEventGenerator
		switch ensemble {
		case "flip":
			generator = ising.NewFlipGenerator()
		case "swap":
			generator = ising.NewSwapGenerator()
		default:
			return fmt.Errorf("unknown ensemble %q (want \"flip\" or \"swap\")", ensemble)
		}

		mode := mc.SampleByPass
		if sampleMode == "step" {
			mode = mc.SampleByStep
		} else if sampleMode != "pass" {
			return fmt.Errorf("unknown sample mode %q (want \"pass\" or \"step\")", sampleMode)
		}
		period := samplePeriod
		if samplingConfig != nil {
			// A sampling section in the YAML config overrides the flags.
			if samplingConfig.Period != nil {
				if period, err = samplingConfig.SamplePeriod(); err != nil {
					return err
				}
			}
			if samplingConfig.Mode != "" {
				if mode, err = samplingConfig.SampleModeFromConfig(); err != nil {
					return err
				}
			}
		}

		var methodLog *mc.MethodLog
		if statusFrequency > 0 {
			methodLog = &mc.MethodLog{Frequency: time.Duration(statusFrequency * float64(time.Second))}
		}

		logrus.Infof("Starting run: %dx%d lattice, J=%v, T=%vK, mu=%v, seed=%d",
			rows, cols, coupling, tempK, mu, seed)

		driver, err := mc.NewSimulationDriver(mc.RunParams{
			State:             state,
			EventGenerator:    generator,
			Potentials:        []mc.PropertyCalculator{potential},
			SamplingFunctions: ising.DefaultSamplingFunctions(potential),
			CompletionParams:  params,
			SamplePeriod:      period,
			SampleMode:        mode,
			Seed:              seed,
			MethodLog:         methodLog,
		})
		if err != nil {
			return err
		}

		results, runErr := driver.Run()
		if err := writeResults(results); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}

		logrus.Info("Run complete.")
		return nil
	},
}

// buildCompletionParams resolves the completion configuration: the YAML
// file when given, otherwise the individual flags. A loaded config may also
// carry a sampling section, returned for the caller to apply.
func buildCompletionParams() (mc.CompletionCheckParams, *mc.SamplingConfig, error) {
	if completionFile != "" {
		config, err := mc.LoadCompletionConfig(completionFile)
		if err != nil {
			return mc.CompletionCheckParams{}, nil, err
		}
		params, err := config.ToParams()
		if err != nil {
			return mc.CompletionCheckParams{}, nil, err
		}
		return params, &config.Sampling, nil
	}

	params := mc.NewCompletionCheckParams()
	params.LogSpacing = checkSpacing == "log"
	params.CheckBegin = checkBegin
	params.CheckPeriod = checkPeriod
	params.Statistics = mc.BasicStatisticsCalculator{Confidence: confidence}
	if minSample > 0 {
		v := int(minSample)
		params.CutoffParams.MinSample = &v
	}
	if maxSample > 0 {
		v := int(maxSample)
		params.CutoffParams.MaxSample = &v
	}
	for _, name := range convergeNames {
		params.RequestedPrecision[name] = mc.AbsPrecision(absPrecision)
	}
	return params, nil, nil
}

// writeResults renders the results bundle as JSON to the output file or
// stdout. Partial results from an aborted run are written too.
func writeResults(results *mc.Results) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the run's random source")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Lattice and model configs
	runCmd.Flags().IntVar(&rows, "rows", 25, "Lattice rows")
	runCmd.Flags().IntVar(&cols, "cols", 25, "Lattice columns")
	runCmd.Flags().IntVar(&fillValue, "fill", 1, "Initial occupant value on every site (+1 or -1)")
	runCmd.Flags().Float64Var(&coupling, "coupling", 0.1, "Nearest-neighbor coupling constant J")
	runCmd.Flags().StringVar(&ensemble, "ensemble", "flip", "Event generator: flip (semi-grand canonical) or swap (canonical)")
	runCmd.Flags().Float64Var(&tempK, "temperature", 2000.0, "Temperature in K")
	runCmd.Flags().Float64SliceVar(&mu, "exchange-potential", []float64{0.0}, "Comma-separated exchange potential components")

	// Sampling and completion configs
	runCmd.Flags().Int64Var(&samplePeriod, "sample-period", 1, "Sample period, counted per sample-mode")
	runCmd.Flags().StringVar(&sampleMode, "sample-mode", "pass", "Sample period unit: pass or step")
	runCmd.Flags().Int64Var(&minSample, "min-sample", 100, "Minimum number of samples before completion")
	runCmd.Flags().Int64Var(&maxSample, "max-sample", 0, "Maximum number of samples (0 = unlimited)")
	runCmd.Flags().Float64Var(&checkBegin, "check-begin", 100, "Sample count of the first completion check")
	runCmd.Flags().Float64Var(&checkPeriod, "check-period", 10, "Spacing between completion checks")
	runCmd.Flags().StringVar(&checkSpacing, "check-spacing", "linear", "Completion check spacing: linear or log")
	runCmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level for calculated precision")
	runCmd.Flags().Float64Var(&absPrecision, "abs-precision", 0.001, "Absolute precision requested on converged quantities")
	runCmd.Flags().StringSliceVar(&convergeNames, "converge", []string{"potential_energy", "param_composition"},
		"Comma-separated sampled quantities to converge")
	runCmd.Flags().StringVar(&completionFile, "completion-config", "", "YAML completion config path (overrides completion flags)")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Results JSON path (default stdout)")
	runCmd.Flags().Float64Var(&statusFrequency, "status-frequency", 0, "Seconds between progress reports (0 = silent)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
