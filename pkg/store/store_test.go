package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/internal/testutil"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Migrates(t *testing.T) {
	s := openMemory(t)
	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	run, err := s.StartRun("clean")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "clean", got.Stage)
}

func TestRunLifecycle(t *testing.T) {
	s := openMemory(t)

	ok, err := s.StartRun("split")
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, ok.Status)
	assert.Len(t, ok.ID, 36)

	bad, err := s.StartRun("fit")
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(ok.ID, nil))
	require.NoError(t, s.FinishRun(bad.ID, errors.New("boom")))

	got, err := s.GetRun(ok.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)
	assert.False(t, got.CompletedAt.Before(got.StartedAt))

	got, err = s.GetRun(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, bad.ID, runs[0].ID)
	assert.Equal(t, ok.ID, runs[1].ID)

	runs, err = s.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRun_NotFound(t *testing.T) {
	s := openMemory(t)
	_, err := s.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.FinishRun("missing", nil), ErrRunNotFound)
}

func TestScores(t *testing.T) {
	s := openMemory(t)
	run, err := s.StartRun("fit")
	require.NoError(t, err)

	rows := []ScoreRow{
		{K: 4, Mean: 0.91, Std: 0.05, SEM: 0.009},
		{K: 1, Mean: 0.93, Std: 0.04, SEM: 0.007, Best: true},
	}
	require.NoError(t, s.RecordScores(run.ID, rows))

	got, err := s.Scores(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[1], got[0])
	assert.Equal(t, rows[0], got[1])

	err = s.RecordScores("missing", rows[:1])
	assert.Error(t, err)

	// duplicate k rolls the whole batch back
	other, err := s.StartRun("fit")
	require.NoError(t, err)
	err = s.RecordScores(other.ID, []ScoreRow{{K: 7}, {K: 7}})
	assert.Error(t, err)
	got, err = s.Scores(other.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClosedStore(t *testing.T) {
	s := &Store{}
	_, err := s.StartRun("x")
	assert.Error(t, err)
	_, err = s.ListRuns(1)
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}
