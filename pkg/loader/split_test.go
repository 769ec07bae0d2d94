package loader

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/pkg/data"
)

// labelled builds n rows with a unique id and a label that is "M" for every third row.
func labelled(t *testing.T, n int) *data.Dataset {
	t.Helper()
	rows := make([][]string, n)
	for i := range n {
		label := "B"
		if i%3 == 0 {
			label = "M"
		}
		rows[i] = []string{strconv.Itoa(i), label}
	}
	ds, err := data.New("cancer", []string{"id", "diagnosis"}, rows)
	require.NoError(t, err)
	return ds
}

func ids(t *testing.T, ds *data.Dataset) []string {
	t.Helper()
	col, err := ds.Column("id")
	require.NoError(t, err)
	return col
}

func count(t *testing.T, ds *data.Dataset, label string) int {
	t.Helper()
	col, err := ds.Column("diagnosis")
	require.NoError(t, err)
	n := 0
	for _, v := range col {
		if v == label {
			n++
		}
	}
	return n
}

func TestTrainTestSplit_Disjoint(t *testing.T) {
	ds := labelled(t, 100)
	train, test, err := TrainTestSplit(ds, 0.8, "", rand.New(rand.NewSource(123)))
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())

	all := append(ids(t, train), ids(t, test)...)
	sort.Strings(all)
	want := ids(t, ds)
	sort.Strings(want)
	assert.Equal(t, want, all)
}

func TestTrainTestSplit_Stratified(t *testing.T) {
	ds := labelled(t, 90) // 30 M, 60 B
	train, test, err := TrainTestSplit(ds, 0.7, "diagnosis", rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 63, train.Len())
	assert.Equal(t, 27, test.Len())
	assert.Equal(t, 21, count(t, train, "M"))
	assert.Equal(t, 42, count(t, train, "B"))
	assert.Equal(t, 9, count(t, test, "M"))
}

func TestTrainTestSplit_LargestRemainder(t *testing.T) {
	ds := labelled(t, 10) // 4 M, 6 B
	train, _, err := TrainTestSplit(ds, 0.75, "diagnosis", rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	// quotas 3.0 and 4.5: the extra row goes to B
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, count(t, train, "M"))
	assert.Equal(t, 4, count(t, train, "B"))
}

func TestTrainTestSplit_Reproducible(t *testing.T) {
	ds := labelled(t, 50)
	a, _, err := TrainTestSplit(ds, 0.6, "diagnosis", rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, _, err := TrainTestSplit(ds, 0.6, "diagnosis", rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, ids(t, a), ids(t, b))
}

func TestTrainTestSplit_Errors(t *testing.T) {
	ds := labelled(t, 10)
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name      string
		ds        *data.Dataset
		size      float64
		stratify  string
		rng       *rand.Rand
		wantError error
	}{
		{"nil dataset", nil, 0.5, "", rng, data.ErrInvalidInput},
		{"nil rng", ds, 0.5, "", nil, data.ErrInvalidInput},
		{"zero size", ds, 0, "", rng, data.ErrInvalidInput},
		{"full size", ds, 1, "", rng, data.ErrInvalidInput},
		{"empty train", ds, 0.05, "", rng, data.ErrInvalidInput},
		{"missing stratify column", ds, 0.5, "label", rng, data.ErrColumnNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := TrainTestSplit(tt.ds, tt.size, tt.stratify, tt.rng)
			assert.ErrorIs(t, err, tt.wantError)
		})
	}
}

func TestKFoldSplit(t *testing.T) {
	folds, err := KFoldSplit(10, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, folds, 3)
	seen := map[int]bool{}
	for _, f := range folds {
		assert.InDelta(t, 3.5, len(f), 0.5)
		for _, i := range f {
			assert.False(t, seen[i])
			seen[i] = true
		}
	}
	assert.Len(t, seen, 10)

	_, err = KFoldSplit(3, 5, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, data.ErrInvalidInput)
	_, err = KFoldSplit(10, 1, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, data.ErrInvalidInput)
}

func TestStratifiedKFold(t *testing.T) {
	labels, err := labelled(t, 30).Column("diagnosis")
	require.NoError(t, err)
	folds, err := StratifiedKFold(labels, 5, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	for i, f := range folds {
		assert.Len(t, f, 6)
		m := 0
		for _, idx := range f {
			if labels[idx] == "M" {
				m++
			}
		}
		assert.Equal(t, 2, m, "fold %d", i)

		train, test := Fold(folds, i)
		assert.Len(t, train, 24)
		assert.Equal(t, f, test)
	}
}
