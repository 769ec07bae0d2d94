// Package tune chooses the number of neighbours of the KNN pipeline by
// stratified cross-validation over a grid of k.
package tune

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"cancerml/pkg/data"
	"cancerml/pkg/loader"
	"cancerml/pkg/model"
	"cancerml/pkg/pipeline"
	"cancerml/pkg/stats"
)

// Output file names.
const (
	PlotFile   = "cancer_choose_k.png"
	ScoresFile = "cancer_cv_scores.csv"
)

// Config controls a grid search.
type Config struct {
	Neighbors     []int
	Folds         int
	Beta          float64
	LabelColumn   string
	PositiveLabel string
	// Workers bounds the grid points scored at once. Zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig searches k = 1, 4, ..., 97 with 30 folds and the F2 score.
func DefaultConfig() Config {
	grid, _ := Grid(1, 99, 3)
	return Config{
		Neighbors:     grid,
		Folds:         30,
		Beta:          2,
		LabelColumn:   "diagnosis",
		PositiveLabel: "Malignant",
	}
}

// Grid returns lo, lo+step, ... up to and including hi.
func Grid(lo, hi, step int) ([]int, error) {
	if lo < 1 || hi < lo || step < 1 {
		return nil, fmt.Errorf("%w: invalid neighbour grid %d..%d step %d", data.ErrInvalidInput, lo, hi, step)
	}
	var out []int
	for k := lo; k <= hi; k += step {
		out = append(out, k)
	}
	return out, nil
}

func (c Config) validate() error {
	if len(c.Neighbors) == 0 {
		return fmt.Errorf("%w: neighbour grid is empty", data.ErrInvalidInput)
	}
	for _, k := range c.Neighbors {
		if k < 1 {
			return fmt.Errorf("%w: neighbours must be positive, got %d", data.ErrInvalidInput, k)
		}
	}
	if c.Folds < 2 {
		return fmt.Errorf("%w: need at least 2 folds, got %d", data.ErrInvalidInput, c.Folds)
	}
	if c.Beta <= 0 {
		return fmt.Errorf("%w: beta must be positive, got %v", data.ErrInvalidInput, c.Beta)
	}
	if c.LabelColumn == "" || c.PositiveLabel == "" {
		return fmt.Errorf("%w: label column and positive label are required", data.ErrInvalidInput)
	}
	return nil
}

// Score is the cross-validated F-beta of one k.
type Score struct {
	K     int
	Mean  float64
	Std   float64
	SEM   float64
	Lower float64 // Mean - SEM/2
	Upper float64 // Mean + SEM/2
	Folds []float64
}

// Result is the outcome of a grid search.
type Result struct {
	Scores   []Score // in grid order
	Best     Score
	Pipeline *pipeline.Pipeline // refitted on all training rows with Best.K
}

type fold struct {
	train, test *data.Dataset
}

// GridSearch scores every k of cfg.Neighbors on the same stratified folds of
// train, each fold fitting a fresh scaler and classifier. The best k has the
// highest mean score, the smallest k winning ties.
func GridSearch(ctx context.Context, train *data.Dataset, cfg Config, rng *rand.Rand, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if train == nil {
		return nil, fmt.Errorf("%w: training data must not be nil", data.ErrInvalidInput)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	labels, err := train.Column(cfg.LabelColumn)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	idx, err := loader.StratifiedKFold(labels, cfg.Folds, rng)
	if err != nil {
		return nil, err
	}

	folds := make([]fold, len(idx))
	smallest := train.Len()
	for i := range idx {
		tr, te := loader.Fold(idx, i)
		folds[i] = fold{train: train.Select(train.Name, tr), test: train.Select(train.Name, te)}
		smallest = min(smallest, len(tr))
	}
	for _, k := range cfg.Neighbors {
		if k > smallest {
			return nil, fmt.Errorf("%w: k = %d exceeds the %d rows of the smallest training fold", data.ErrInvalidInput, k, smallest)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger.Info("starting grid search",
		slog.Int("grid_points", len(cfg.Neighbors)),
		slog.Int("folds", cfg.Folds),
		slog.Int("workers", workers))
	start := time.Now()

	scores := make([]Score, len(cfg.Neighbors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range cfg.Neighbors {
		g.Go(func() error {
			s, err := crossValidate(gctx, folds, k, cfg)
			if err != nil {
				return fmt.Errorf("k = %d: %w", k, err)
			}
			scores[i] = s
			logger.Debug("scored grid point", slog.Int("k", k), slog.Float64("mean", s.Mean), slog.Float64("sem", s.SEM))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Mean > best.Mean || (s.Mean == best.Mean && s.K < best.K) {
			best = s
		}
	}
	final := pipeline.New(pipeline.NewColumnScaler(), model.NewKNN(best.K), cfg.LabelColumn, cfg.PositiveLabel)
	if err := final.Fit(train); err != nil {
		return nil, fmt.Errorf("refit k = %d: %w", best.K, err)
	}
	logger.Info("grid search finished",
		slog.Int("best_k", best.K),
		slog.Float64("best_mean", best.Mean),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Scores: scores, Best: best, Pipeline: final}, nil
}

func crossValidate(ctx context.Context, folds []fold, k int, cfg Config) (Score, error) {
	fs := make([]float64, len(folds))
	for i, f := range folds {
		if err := ctx.Err(); err != nil {
			return Score{}, err
		}
		p := pipeline.New(pipeline.NewColumnScaler(), model.NewKNN(k), cfg.LabelColumn, cfg.PositiveLabel)
		if err := p.Fit(f.train); err != nil {
			return Score{}, fmt.Errorf("fold %d: %w", i, err)
		}
		m, err := p.Score(f.test, cfg.Beta)
		if err != nil {
			return Score{}, fmt.Errorf("fold %d: %w", i, err)
		}
		fs[i] = m.FBeta
	}
	sum := stats.Summarize(fs)
	return Score{
		K:     k,
		Mean:  sum.Mean,
		Std:   sum.Std,
		SEM:   sum.SEM,
		Lower: sum.Mean - sum.SEM/2,
		Upper: sum.Mean + sum.SEM/2,
		Folds: fs,
	}, nil
}
