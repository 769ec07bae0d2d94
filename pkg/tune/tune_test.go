package tune

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/internal/testutil"
	"cancerml/pkg/data"
	"cancerml/pkg/dataprep"
)

func cleaned(t *testing.T, n int) *data.Dataset {
	t.Helper()
	names := testutil.ColumnNames()
	raw, err := data.LoadRaw(testutil.WriteRows(t, t.TempDir(), "wdbc.data", nil, testutil.SyntheticRows(n, 5)), names)
	require.NoError(t, err)
	opts := dataprep.DefaultCleanOptions()
	opts.DropColumns = []string{names[0]}
	ds, err := dataprep.Clean(raw, opts)
	require.NoError(t, err)
	return ds
}

func TestGrid(t *testing.T) {
	grid, err := Grid(1, 99, 3)
	require.NoError(t, err)
	assert.Len(t, grid, 33)
	assert.Equal(t, 1, grid[0])
	assert.Equal(t, 97, grid[len(grid)-1])

	_, err = Grid(0, 10, 1)
	assert.ErrorIs(t, err, data.ErrInvalidInput)
	_, err = Grid(5, 1, 1)
	assert.ErrorIs(t, err, data.ErrInvalidInput)

	assert.Equal(t, grid, DefaultConfig().Neighbors)
}

func TestGridSearch_SeparableData(t *testing.T) {
	ds := cleaned(t, 90)
	cfg := DefaultConfig()
	cfg.Neighbors = []int{1, 3, 5}
	cfg.Folds = 5
	cfg.Workers = 2

	res, err := GridSearch(context.Background(), ds, cfg, rand.New(rand.NewSource(123)), testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.Len(t, res.Scores, 3)
	for i, s := range res.Scores {
		assert.Equal(t, cfg.Neighbors[i], s.K)
		assert.Len(t, s.Folds, 5)
		assert.InDelta(t, 1, s.Mean, 1e-12)
		assert.InDelta(t, s.Mean-s.SEM/2, s.Lower, 1e-12)
		assert.InDelta(t, s.Mean+s.SEM/2, s.Upper, 1e-12)
	}
	assert.Equal(t, 1, res.Best.K, "ties go to the smallest k")
	assert.Equal(t, 1, res.Pipeline.Model.K)

	pred, err := res.Pipeline.Predict(ds)
	require.NoError(t, err)
	truth, _ := ds.Column("diagnosis")
	assert.Equal(t, truth, pred)
}

func TestGridSearch_Reproducible(t *testing.T) {
	ds := cleaned(t, 60)
	cfg := DefaultConfig()
	cfg.Neighbors = []int{1, 7}
	cfg.Folds = 3

	a, err := GridSearch(context.Background(), ds, cfg, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	b, err := GridSearch(context.Background(), ds, cfg, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Scores, b.Scores)
}

func TestGridSearch_Errors(t *testing.T) {
	ds := cleaned(t, 30)
	rng := rand.New(rand.NewSource(1))
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Folds = 3
	cfg.Neighbors = []int{25}
	_, err := GridSearch(ctx, ds, cfg, rng, nil)
	assert.ErrorIs(t, err, data.ErrInvalidInput, "k larger than a training fold")

	cfg.Neighbors = nil
	_, err = GridSearch(ctx, ds, cfg, rng, nil)
	assert.ErrorIs(t, err, data.ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.Folds = 3
	cfg.Neighbors = []int{1}
	cfg.LabelColumn = "label"
	_, err = GridSearch(ctx, ds, cfg, rng, nil)
	assert.ErrorIs(t, err, data.ErrColumnNotFound)

	cfg.LabelColumn = "diagnosis"
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = GridSearch(cancelled, ds, cfg, rng, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	scores := []Score{
		{K: 1, Mean: 0.9, Std: 0.1, SEM: 0.02, Lower: 0.89, Upper: 0.91},
		{K: 4, Mean: 0.95, Std: 0.05, SEM: 0.01, Lower: 0.945, Upper: 0.955},
	}

	path, err := WriteScores(scores, dir, ScoresFile)
	require.NoError(t, err)
	back, err := data.ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())
	ks, _ := back.Column("n_neighbors")
	assert.Equal(t, []string{"1", "4"}, ks)

	path, err = PlotScores(scores, 2, dir, PlotFile)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = PlotScores(nil, 2, dir, PlotFile)
	assert.ErrorIs(t, err, data.ErrInvalidInput)
	_, err = PlotScores(scores, 2, filepath.Join(dir, "missing"), PlotFile)
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestDropColumnsFrom(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "drop.csv", "feats_to_drop\nmean_radius\nse_area\n")
	cols, err := DropColumnsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mean_radius", "se_area"}, cols)

	cols, err = DropColumnsFrom("")
	require.NoError(t, err)
	assert.Nil(t, cols)

	wrong := testutil.WriteFile(t, dir, "wrong.csv", "columns\nmean_radius\n")
	_, err = DropColumnsFrom(wrong)
	assert.ErrorIs(t, err, data.ErrColumnNotFound)
}
