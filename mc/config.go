package mc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompletionConfig is the YAML form of CompletionCheckParams. Nil pointer
// fields mean "not set in YAML"; defaults follow NewCompletionCheckParams.
type CompletionConfig struct {
	Cutoff struct {
		Count     MinMaxInt   `yaml:"count"`
		Sample    MinMaxInt   `yaml:"sample"`
		Time      MinMaxFloat `yaml:"time"`
		Clocktime MinMaxFloat `yaml:"clocktime"`
	} `yaml:"cutoff"`

	// Spacing is "linear" (default) or "log".
	Spacing         string   `yaml:"spacing"`
	Begin           *float64 `yaml:"begin"`
	Period          *float64 `yaml:"period"`
	ChecksPerPeriod *float64 `yaml:"checks_per_period"`
	Shift           *float64 `yaml:"shift"`
	Confidence      *float64 `yaml:"confidence"`

	Convergence []ConvergenceCriterion `yaml:"convergence"`

	// Sampling optionally fixes the driver's sampling schedule alongside
	// the completion criteria, overriding caller defaults.
	Sampling SamplingConfig `yaml:"sampling"`
}

// MinMaxInt is an optional integer min/max pair.
type MinMaxInt struct {
	Min *int64 `yaml:"min"`
	Max *int64 `yaml:"max"`
}

// MinMaxFloat is an optional float min/max pair.
type MinMaxFloat struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// ConvergenceCriterion requests precision on one sampled quantity.
type ConvergenceCriterion struct {
	Quantity string   `yaml:"quantity"`
	Abs      *float64 `yaml:"abs"`
	Rel      *float64 `yaml:"rel"`
}

// ValidSpacings is the set of recognized check-spacing names.
var ValidSpacings = map[string]bool{"": true, "linear": true, "log": true}

// ValidSampleModes is the set of recognized sample-mode names.
var ValidSampleModes = map[string]bool{"": true, "pass": true, "step": true}

// SamplingConfig is the YAML form of the driver's sampling schedule.
type SamplingConfig struct {
	// Period is the sample period; must be positive. Default 1.
	Period *int64 `yaml:"period"`
	// Mode is "pass" (default) or "step".
	Mode string `yaml:"mode"`
}

// Validate checks names and ranges without building engine types.
func (c *CompletionConfig) Validate() error {
	if !ValidSpacings[c.Spacing] {
		return fmt.Errorf("unknown check spacing %q", c.Spacing)
	}
	if !ValidSampleModes[c.Sampling.Mode] {
		return fmt.Errorf("unknown sample mode %q", c.Sampling.Mode)
	}
	if c.Sampling.Period != nil && *c.Sampling.Period <= 0 {
		return fmt.Errorf("sampling period must be positive, got %d", *c.Sampling.Period)
	}
	if c.Confidence != nil && (*c.Confidence <= 0 || *c.Confidence >= 1) {
		return fmt.Errorf("confidence must be in (0, 1), got %v", *c.Confidence)
	}
	for i, crit := range c.Convergence {
		if crit.Quantity == "" {
			return fmt.Errorf("convergence[%d]: quantity is required", i)
		}
		if crit.Abs == nil && crit.Rel == nil {
			return fmt.Errorf("convergence[%d] (%s): abs or rel precision is required", i, crit.Quantity)
		}
		if crit.Abs != nil && *crit.Abs <= 0 {
			return fmt.Errorf("convergence[%d] (%s): abs precision must be positive", i, crit.Quantity)
		}
		if crit.Rel != nil && *crit.Rel <= 0 {
			return fmt.Errorf("convergence[%d] (%s): rel precision must be positive", i, crit.Quantity)
		}
	}
	return nil
}

// ToParams converts the YAML form into engine parameters.
func (c *CompletionConfig) ToParams() (CompletionCheckParams, error) {
	if err := c.Validate(); err != nil {
		return CompletionCheckParams{}, err
	}
	params := NewCompletionCheckParams()
	params.LogSpacing = c.Spacing == "log"
	if c.Begin != nil {
		params.CheckBegin = *c.Begin
	}
	if c.Period != nil {
		params.CheckPeriod = *c.Period
	}
	if c.ChecksPerPeriod != nil {
		params.ChecksPerPeriod = *c.ChecksPerPeriod
	}
	if c.Shift != nil {
		params.CheckShift = *c.Shift
	}
	if c.Confidence != nil {
		params.Statistics = BasicStatisticsCalculator{Confidence: *c.Confidence}
	}

	params.CutoffParams.MinCount = c.Cutoff.Count.Min
	params.CutoffParams.MaxCount = c.Cutoff.Count.Max
	if c.Cutoff.Sample.Min != nil {
		v := int(*c.Cutoff.Sample.Min)
		params.CutoffParams.MinSample = &v
	}
	if c.Cutoff.Sample.Max != nil {
		v := int(*c.Cutoff.Sample.Max)
		params.CutoffParams.MaxSample = &v
	}
	params.CutoffParams.MinTime = c.Cutoff.Time.Min
	params.CutoffParams.MaxTime = c.Cutoff.Time.Max
	params.CutoffParams.MinClocktime = c.Cutoff.Clocktime.Min
	params.CutoffParams.MaxClocktime = c.Cutoff.Clocktime.Max

	for _, crit := range c.Convergence {
		params.RequestedPrecision[crit.Quantity] = RequestedPrecision{Abs: crit.Abs, Rel: crit.Rel}
	}
	return params, nil
}

// SampleModeFromConfig resolves the YAML sampling mode name.
func (c *SamplingConfig) SampleModeFromConfig() (SampleMode, error) {
	if !ValidSampleModes[c.Mode] {
		return 0, fmt.Errorf("unknown sample mode %q", c.Mode)
	}
	if c.Mode == "step" {
		return SampleByStep, nil
	}
	return SampleByPass, nil
}

// SamplePeriod resolves the configured period, defaulting to 1.
func (c *SamplingConfig) SamplePeriod() (int64, error) {
	if c.Period == nil {
		return 1, nil
	}
	if *c.Period <= 0 {
		return 0, fmt.Errorf("sampling period must be positive, got %d", *c.Period)
	}
	return *c.Period, nil
}

// LoadCompletionConfig reads and parses a YAML completion configuration.
func LoadCompletionConfig(path string) (*CompletionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading completion config: %w", err)
	}
	var config CompletionConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing completion config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
