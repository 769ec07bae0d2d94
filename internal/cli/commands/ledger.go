package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cancerml/internal/cli/config"
	"cancerml/pkg/store"
	"cancerml/pkg/tune"
)

// ledger records one stage in the run ledger. A nil ledger records nothing.
type ledger struct {
	store *store.Store
	run   *store.Run
}

func openLedger(statePath, stage string, logger *slog.Logger) (*ledger, error) {
	if statePath == "" {
		return nil, nil
	}
	if dir := filepath.Dir(statePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	st, err := store.Open(statePath, logger)
	if err != nil {
		return nil, err
	}
	run, err := st.StartRun(stage)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &ledger{store: st, run: run}, nil
}

func (l *ledger) recordScores(scores []tune.Score, best int) error {
	if l == nil {
		return nil
	}
	rows := make([]store.ScoreRow, len(scores))
	for i, s := range scores {
		rows[i] = store.ScoreRow{K: s.K, Mean: s.Mean, Std: s.Std, SEM: s.SEM, Best: s.K == best}
	}
	return l.store.RecordScores(l.run.ID, rows)
}

func (l *ledger) finish(runErr error) error {
	if l == nil {
		return nil
	}
	defer l.store.Close()
	return l.store.FinishRun(l.run.ID, runErr)
}

// runStage runs fn as one ledger entry named stage.
func runStage(ctx context.Context, stage string, fn func(*ledger) error) error {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx).With(slog.String("stage", stage))

	l, err := openLedger(cfg.StatePath, stage, logger)
	if err != nil {
		return err
	}
	err = fn(l)
	if ferr := l.finish(err); ferr != nil {
		logger.Warn("failed to record run", slog.String("error", ferr.Error()))
	}
	return err
}

func ensureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
