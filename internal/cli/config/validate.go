package config

import (
	"errors"
	"fmt"

	"cancerml/pkg/splitcheck"
	"cancerml/pkg/tune"
)

// ErrInvalid is returned for configuration values out of range.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that every value is usable by the pipeline stages.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalid, c.LogFormat)
	}
	if c.LabelColumn == "" || c.PositiveLabel == "" {
		return fmt.Errorf("%w: label_column and positive_label are required", ErrInvalid)
	}
	if c.TrainSize <= 0 || c.TrainSize >= 1 {
		return fmt.Errorf("%w: train_size must be between 0 and 1, got %v", ErrInvalid, c.TrainSize)
	}
	if r := c.Split.MinSizeRatio; r < 0 || r >= 1 {
		return fmt.Errorf("%w: split.min_size_ratio must be within [0, 1), got %v", ErrInvalid, r)
	}
	for name, v := range map[string]float64{
		"split.max_label_drift":   c.Split.MaxLabelDrift,
		"split.max_feature_drift": c.Split.MaxFeatureDrift,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be within (0, 1], got %v", ErrInvalid, name, v)
		}
	}
	if _, err := tune.Grid(c.Tune.KMin, c.Tune.KMax, c.Tune.KStep); err != nil {
		return fmt.Errorf("%w: tune.k_min, tune.k_max and tune.k_step: %v", ErrInvalid, err)
	}
	if c.Tune.Folds < 2 {
		return fmt.Errorf("%w: tune.folds must be at least 2, got %d", ErrInvalid, c.Tune.Folds)
	}
	if c.Tune.Beta <= 0 {
		return fmt.Errorf("%w: tune.beta must be positive, got %v", ErrInvalid, c.Tune.Beta)
	}
	if c.Tune.Workers < 0 {
		return fmt.Errorf("%w: tune.workers must not be negative, got %d", ErrInvalid, c.Tune.Workers)
	}
	return nil
}

// SplitCheck returns the split check configuration.
func (c *Config) SplitCheck() splitcheck.Config {
	return splitcheck.Config{
		LabelColumn:     c.LabelColumn,
		MinSizeRatio:    c.Split.MinSizeRatio,
		MaxLabelDrift:   c.Split.MaxLabelDrift,
		MaxFeatureDrift: c.Split.MaxFeatureDrift,
	}
}

// GridSearch returns the grid search configuration.
func (c *Config) GridSearch() tune.Config {
	grid, _ := tune.Grid(c.Tune.KMin, c.Tune.KMax, c.Tune.KStep)
	return tune.Config{
		Neighbors:     grid,
		Folds:         c.Tune.Folds,
		Beta:          c.Tune.Beta,
		LabelColumn:   c.LabelColumn,
		PositiveLabel: c.PositiveLabel,
		Workers:       c.Tune.Workers,
	}
}
