package pipeline

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/internal/testutil"
	"cancerml/pkg/data"
	"cancerml/pkg/dataprep"
	"cancerml/pkg/loader"
	"cancerml/pkg/model"
	"cancerml/pkg/stats"
)

func cleaned(t *testing.T, n int) *data.Dataset {
	t.Helper()
	names := testutil.ColumnNames()
	raw, err := data.LoadRaw(testutil.WriteRows(t, t.TempDir(), "wdbc.data", nil, testutil.SyntheticRows(n, 11)), names)
	require.NoError(t, err)
	opts := dataprep.DefaultCleanOptions()
	opts.DropColumns = []string{names[0]}
	ds, err := dataprep.Clean(raw, opts)
	require.NoError(t, err)
	return ds
}

func TestColumnScaler(t *testing.T) {
	ds, err := data.New("d", []string{"label", "x", "y"}, [][]string{
		{"a", "1", "10"},
		{"b", "3", ""},
		{"a", "5", "30"},
	})
	require.NoError(t, err)

	s := NewColumnScaler()
	out, err := s.FitTransform(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, s.Numeric)
	assert.Equal(t, ds.Columns(), out.Columns())

	labels, _ := out.Column("label")
	assert.Equal(t, []string{"a", "b", "a"}, labels)

	x, _, err := out.Floats("x")
	require.NoError(t, err)
	assert.InDelta(t, 0, stats.Summarize(x).Mean, 1e-12)
	assert.InDelta(t, 1, stats.Summarize(x).Std, 1e-12)

	y, _ := out.Column("y")
	assert.Equal(t, "0", y[1], "missing cells take the mean")
}

func TestColumnScaler_Errors(t *testing.T) {
	s := NewColumnScaler()
	ds, err := data.New("d", []string{"x"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = s.Transform(ds)
	assert.ErrorIs(t, err, stats.ErrNotFitted)

	text, err := data.New("t", []string{"label"}, [][]string{{"a"}})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Fit(text), data.ErrInvalidInput)
	assert.ErrorIs(t, s.Fit(nil), data.ErrInvalidInput)

	require.NoError(t, s.Fit(ds))
	other, err := data.New("o", []string{"z"}, [][]string{{"1"}})
	require.NoError(t, err)
	_, err = s.Transform(other)
	assert.ErrorIs(t, err, data.ErrInvalidInput)
	assert.False(t, s.Unfitted().Fitted())
}

func TestPreprocess(t *testing.T) {
	ds := cleaned(t, 80)
	train, test, err := loader.TrainTestSplit(ds, 0.75, "diagnosis", rand.New(rand.NewSource(123)))
	require.NoError(t, err)

	dataTo, prepTo := t.TempDir(), t.TempDir()
	scaler, err := Preprocess(train, test, dataTo, prepTo, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Len(t, scaler.Numeric, 30)

	for _, name := range []string{ScaledTrainFile, ScaledTestFile} {
		back, err := data.ReadCSV(filepath.Join(dataTo, name))
		require.NoError(t, err)
		assert.Equal(t, ds.Columns(), back.Columns())
	}

	loaded, err := LoadScaler(filepath.Join(prepTo, PreprocessorFile))
	require.NoError(t, err)
	assert.True(t, loaded.Fitted())
	assert.Equal(t, scaler.Scaler.Mean, loaded.Scaler.Mean)

	_, err = Preprocess(train, test, filepath.Join(dataTo, "missing"), prepTo, nil)
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestPipeline_FitPredictSaveLoad(t *testing.T) {
	ds := cleaned(t, 120)
	train, test, err := loader.TrainTestSplit(ds, 0.75, "diagnosis", rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	p := New(NewColumnScaler(), model.NewKNN(5), "diagnosis", "Malignant")
	require.NoError(t, p.Fit(train))
	assert.Equal(t, "Benign", p.Negative)

	pred, err := p.Predict(test)
	require.NoError(t, err)
	truth, _ := test.Column("diagnosis")
	assert.Equal(t, truth, pred, "classes are well separated")

	m, err := p.Score(test, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.FBeta)

	dir := t.TempDir()
	path, err := p.Save(dir, PipelineFile)
	require.NoError(t, err)
	back, err := LoadPipeline(path)
	require.NoError(t, err)
	again, err := back.Predict(test)
	require.NoError(t, err)
	assert.Equal(t, pred, again)
}

func TestPipeline_Errors(t *testing.T) {
	p := New(NewColumnScaler(), model.NewKNN(1), "diagnosis", "Malignant")
	ds, err := data.New("d", []string{"diagnosis", "x"}, [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Fit(ds), data.ErrInvalidInput)

	noLabel, err := data.New("d", []string{"x"}, [][]string{{"1"}})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Fit(noLabel), data.ErrColumnNotFound)

	dir := t.TempDir()
	_, err = LoadPipeline(filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, data.ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadPipeline(bad)
	assert.ErrorIs(t, err, data.ErrInvalidInput)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = LoadPipeline(empty)
	assert.ErrorIs(t, err, data.ErrInvalidInput)
}

func TestPipeline_SingleFeature(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		label := "Benign"
		if i >= 10 {
			label = "Malignant"
		}
		rows[i] = []string{label, strconv.Itoa(i)}
	}
	ds, err := data.New("line", []string{"diagnosis", "x"}, rows)
	require.NoError(t, err)

	p := New(NewColumnScaler(), model.NewKNN(3), "diagnosis", "Malignant")
	require.NoError(t, p.Fit(ds))
	probe, err := data.New("probe", []string{"x"}, [][]string{{"-5"}, {"25"}})
	require.NoError(t, err)
	pred, err := p.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, []string{"Benign", "Malignant"}, pred)
}
