// Package splitcheck runs integrity checks over a train/test split: relative
// size, leakage of samples between the sides, and label and feature drift.
package splitcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"cancerml/pkg/data"
	"cancerml/pkg/stats"
)

// ErrCheckFailed is matched by every failed split check.
var ErrCheckFailed = errors.New("split check failed")

// Check names, in evaluation order.
const (
	CheckDatasetSize  = "dataset_size"
	CheckSamplesMix   = "train_test_samples_mix"
	CheckLabelDrift   = "label_drift"
	CheckFeatureDrift = "feature_drift"
)

// Config holds the check thresholds.
type Config struct {
	// LabelColumn is compared with Cramér's V. Empty skips the label check.
	LabelColumn string
	// FeatureColumns are compared with the Kolmogorov-Smirnov statistic.
	// Nil means every numeric column other than the label.
	FeatureColumns []string

	// MinSizeRatio is the exclusive lower bound on test rows / train rows.
	MinSizeRatio float64
	// MaxLabelDrift and MaxFeatureDrift are exclusive upper bounds.
	MaxLabelDrift   float64
	MaxFeatureDrift float64

	Logger *slog.Logger
}

// DefaultConfig returns the thresholds used for the diagnosis data.
func DefaultConfig() Config {
	return Config{
		LabelColumn:     "diagnosis",
		MinSizeRatio:    0.2,
		MaxLabelDrift:   0.4,
		MaxFeatureDrift: 0.4,
	}
}

func (c Config) validate() error {
	if c.MinSizeRatio < 0 || c.MinSizeRatio >= 1 {
		return fmt.Errorf("%w: min size ratio %v must be within [0, 1)", data.ErrInvalidInput, c.MinSizeRatio)
	}
	if c.MaxLabelDrift <= 0 || c.MaxLabelDrift > 1 {
		return fmt.Errorf("%w: max label drift %v must be within (0, 1]", data.ErrInvalidInput, c.MaxLabelDrift)
	}
	if c.MaxFeatureDrift <= 0 || c.MaxFeatureDrift > 1 {
		return fmt.Errorf("%w: max feature drift %v must be within (0, 1]", data.ErrInvalidInput, c.MaxFeatureDrift)
	}
	return nil
}

// Result is the outcome of one evaluated check.
type Result struct {
	Check     string
	Value     float64
	Threshold float64
	Passed    bool
	// Subject names the column behind Value, if any.
	Subject string
}

// Report lists the checks evaluated, in order.
type Report struct {
	TrainRows int
	TestRows  int
	Results   []Result
}

// CheckError describes the first check that failed.
type CheckError struct {
	Check     string
	Value     float64
	Threshold float64
	msg       string
}

func (e *CheckError) Error() string { return e.msg }

func (e *CheckError) Is(target error) bool { return target == ErrCheckFailed }

// Run evaluates the checks in order and stops at the first failure, which is
// returned as a *CheckError alongside the report of the checks evaluated so far.
func Run(train, test *data.Dataset, cfg Config) (*Report, error) {
	if train == nil || test == nil {
		return nil, fmt.Errorf("%w: train and test datasets are required", data.ErrInvalidInput)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !slices.Equal(train.Columns(), test.Columns()) {
		return nil, fmt.Errorf("%w: train and test datasets have different columns", data.ErrInvalidInput)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	report := &Report{TrainRows: train.Len(), TestRows: test.Len()}
	checks := []func(*data.Dataset, *data.Dataset, Config) (Result, error){
		datasetSize,
		samplesMix,
		labelDrift,
		featureDrift,
	}
	for _, check := range checks {
		res, err := check(train, test, cfg)
		if err != nil {
			return report, err
		}
		if res.Check == "" {
			continue
		}
		report.Results = append(report.Results, res)
		logger.Debug("split check evaluated",
			slog.String("check", res.Check),
			slog.Float64("value", res.Value),
			slog.Float64("threshold", res.Threshold),
			slog.Bool("passed", res.Passed))
		if !res.Passed {
			return report, failure(res)
		}
	}
	return report, nil
}

func failure(r Result) *CheckError {
	e := &CheckError{Check: r.Check, Value: r.Value, Threshold: r.Threshold}
	switch r.Check {
	case CheckDatasetSize:
		if r.Subject != "" {
			e.msg = "the train dataset should not be smaller than the test dataset (" + r.Subject + ")"
		} else {
			e.msg = fmt.Sprintf("the train test data size ratio should be greater than %g (got %.2f)", r.Threshold, r.Value)
		}
	case CheckSamplesMix:
		e.msg = fmt.Sprintf("data from test dataset also present in train dataset (%s rows)", r.Subject)
	case CheckLabelDrift:
		e.msg = fmt.Sprintf("label drift score %.3f for %q should be less than %g", r.Value, r.Subject, r.Threshold)
	default:
		e.msg = fmt.Sprintf("feature drift score %.3f for feature %q should be less than %g", r.Value, r.Subject, r.Threshold)
	}
	return e
}

func datasetSize(train, test *data.Dataset, cfg Config) (Result, error) {
	res := Result{Check: CheckDatasetSize, Threshold: cfg.MinSizeRatio}
	if train.Len() == 0 {
		return res, fmt.Errorf("%w: train dataset is empty", data.ErrInvalidInput)
	}
	res.Value = float64(test.Len()) / float64(train.Len())
	res.Passed = res.Value > cfg.MinSizeRatio
	if res.Passed && train.Len() < test.Len() {
		res.Passed = false
		res.Subject = fmt.Sprintf("train %d, test %d", train.Len(), test.Len())
	}
	return res, nil
}

func samplesMix(train, test *data.Dataset, _ Config) (Result, error) {
	seen := make(map[string]bool, train.Len())
	for i := range train.Len() {
		seen[train.RowKey(i)] = true
	}
	mixed := 0
	for i := range test.Len() {
		if seen[test.RowKey(i)] {
			mixed++
		}
	}
	res := Result{Check: CheckSamplesMix, Passed: mixed == 0, Subject: fmt.Sprint(mixed)}
	if test.Len() > 0 {
		res.Value = float64(mixed) / float64(test.Len())
	}
	return res, nil
}

func labelDrift(train, test *data.Dataset, cfg Config) (Result, error) {
	if cfg.LabelColumn == "" {
		return Result{}, nil
	}
	a, err := train.Column(cfg.LabelColumn)
	if err != nil {
		return Result{}, fmt.Errorf("label drift: %w", err)
	}
	b, err := test.Column(cfg.LabelColumn)
	if err != nil {
		return Result{}, fmt.Errorf("label drift: %w", err)
	}
	v, err := stats.CramersV(a, b)
	if err != nil {
		return Result{}, fmt.Errorf("label drift: %w", err)
	}
	return Result{
		Check:     CheckLabelDrift,
		Value:     v,
		Threshold: cfg.MaxLabelDrift,
		Passed:    v < cfg.MaxLabelDrift,
		Subject:   cfg.LabelColumn,
	}, nil
}

func featureDrift(train, test *data.Dataset, cfg Config) (Result, error) {
	features := cfg.FeatureColumns
	if features == nil {
		for _, c := range train.Columns() {
			if c != cfg.LabelColumn && train.IsNumeric(c) && test.IsNumeric(c) {
				features = append(features, c)
			}
		}
	}
	if len(features) == 0 {
		return Result{}, nil
	}

	res := Result{Check: CheckFeatureDrift, Threshold: cfg.MaxFeatureDrift, Value: -1}
	for _, f := range features {
		a, err := withNaN(train, f)
		if err != nil {
			return Result{}, fmt.Errorf("feature drift: %w", err)
		}
		b, err := withNaN(test, f)
		if err != nil {
			return Result{}, fmt.Errorf("feature drift: %w", err)
		}
		ks, err := stats.KSStatistic(a, b)
		if err != nil {
			return Result{}, fmt.Errorf("feature drift %q: %w", f, err)
		}
		if ks > res.Value {
			res.Value, res.Subject = ks, f
		}
	}
	res.Passed = res.Value < cfg.MaxFeatureDrift
	return res, nil
}

// withNaN returns the column as floats with NaN for null cells.
func withNaN(ds *data.Dataset, col string) ([]float64, error) {
	vals, valid, err := ds.Floats(col)
	if err != nil {
		return nil, err
	}
	for i, ok := range valid {
		if !ok {
			vals[i] = math.NaN()
		}
	}
	return vals, nil
}
