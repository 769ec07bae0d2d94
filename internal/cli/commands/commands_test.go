package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/internal/cli/config"
	"cancerml/internal/testutil"
	"cancerml/pkg/schema"
	"cancerml/pkg/splitcheck"
	"cancerml/pkg/store"
	"cancerml/pkg/tune"
)

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewDownloadCommand(), "download", []string{"url", "write-to", "timeout"}},
		{NewCleanCommand(), "clean", []string{"raw-data-file", "name-file", "data-config-file", "expectations", "write-to", "file-name"}},
		{NewSplitCommand(), "split", []string{"cleaned-data", "train-data-size", "data-to", "preprocessor-to"}},
		{NewFitCommand(), "fit", []string{"training-data", "preprocessor", "columns-to-drop", "pipeline-to", "plot-to"}},
		{NewAllCommand(), "all", []string{"raw-data-file", "name-file", "data-config-file", "data-to", "results-to"}},
		{NewRunsCommand(), "runs", []string{"limit"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "cancerml v1.2.3")
}

func TestRunStage_RecordsOutcome(t *testing.T) {
	cfg := config.Default()
	cfg.StatePath = filepath.Join(t.TempDir(), "ledger", "state.db")
	ctx := config.WithLogger(config.WithConfig(context.Background(), cfg), testutil.NewTestLogger(t))

	scores := []tune.Score{{K: 1, Mean: 0.9}, {K: 4, Mean: 0.95}}
	require.NoError(t, runStage(ctx, "fit", func(l *ledger) error {
		return l.recordScores(scores, 4)
	}))
	boom := errors.New("boom")
	assert.ErrorIs(t, runStage(ctx, "split", func(*ledger) error { return boom }), boom)

	st, err := store.Open(cfg.StatePath, nil)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, store.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, store.RunStatusCompleted, runs[1].Status)

	rows, err := st.Scores(runs[1].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Best)
	assert.True(t, rows[1].Best)
}

func TestRunStage_LedgerDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.StatePath = ""
	ctx := config.WithConfig(context.Background(), cfg)

	called := false
	require.NoError(t, runStage(ctx, "clean", func(l *ledger) error {
		called = true
		assert.Nil(t, l)
		return l.recordScores([]tune.Score{{K: 1}}, 1)
	}))
	assert.True(t, called)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	renderFailures(&buf, &schema.Error{Failures: []schema.Failure{
		{Column: "mean_radius", Check: schema.CheckRange, Detail: "2 values out of range"},
		{Check: "no_duplicate_rows", Detail: "1 duplicate row"},
	}})
	assert.Contains(t, buf.String(), "mean_radius")
	assert.Contains(t, buf.String(), "(dataset)")

	buf.Reset()
	renderSplitReport(&buf, &splitcheck.Report{TrainRows: 7, TestRows: 3, Results: []splitcheck.Result{
		{Check: splitcheck.CheckDatasetSize, Value: 0.43, Threshold: 0.2, Passed: true},
	}})
	assert.Contains(t, buf.String(), "train rows: 7, test rows: 3")
	assert.Contains(t, buf.String(), "dataset_size")

	buf.Reset()
	renderScores(&buf, []tune.Score{{K: 1, Mean: 0.9}, {K: 4, Mean: 0.95}}, 4)
	assert.Contains(t, buf.String(), "best")

	buf.Reset()
	renderRuns(&buf, nil)
	assert.Contains(t, buf.String(), "(no runs)")

	done := time.Now()
	buf.Reset()
	renderRuns(&buf, []*store.Run{{ID: "abc", Stage: "fit", Status: store.RunStatusCompleted, StartedAt: done.Add(-time.Second), CompletedAt: &done}})
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "1s")
}
