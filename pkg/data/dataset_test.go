package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New("sample", []string{"id", "diagnosis", "mean_radius"}, [][]string{
		{"1", "M", "17.99"},
		{"2", "B", ""},
		{"3", "M", "20.57"},
	})
	require.NoError(t, err)
	return ds
}

func TestNew_RejectsBadShapes(t *testing.T) {
	_, err := New("dup", []string{"a", "a"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New("ragged", []string{"a", "b"}, [][]string{{"1"}})
	assert.ErrorIs(t, err, ErrColumnCount)
}

func TestDataset_Floats(t *testing.T) {
	ds := sample(t)
	vals, valid, err := ds.Floats("mean_radius")
	require.NoError(t, err)
	assert.Equal(t, []float64{17.99, 0, 20.57}, vals)
	assert.Equal(t, []bool{true, false, true}, valid)
	assert.True(t, ds.IsNumeric("mean_radius"))
	assert.False(t, ds.IsNumeric("diagnosis"))

	_, _, err = ds.Floats("diagnosis")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = ds.Floats("nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDataset_DropDoesNotTouchOriginal(t *testing.T) {
	ds := sample(t)
	dropped, err := ds.Drop("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"diagnosis", "mean_radius"}, dropped.Columns())
	assert.Equal(t, []string{"M", "17.99"}, dropped.Row(0))
	assert.Equal(t, 3, ds.Width())

	_, err = dropped.Drop("id")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDataset_ReplaceAndSelect(t *testing.T) {
	ds := sample(t)
	up, err := ds.Replace("diagnosis", func(s string) string { return s + s })
	require.NoError(t, err)
	col, _ := up.Column("diagnosis")
	assert.Equal(t, []string{"MM", "BB", "MM"}, col)

	sub := ds.Select("sub", []int{2, 0})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, "3", sub.Row(0)[0])
	assert.Equal(t, ds.RowKey(0), sub.RowKey(1))
	assert.NotEqual(t, ds.RowKey(0), ds.RowKey(2))
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", " ", "NA", "NaN", "nan", "null"} {
		assert.True(t, IsNull(s), s)
	}
	assert.False(t, IsNull("0"))
}

func TestDataset_WithColumn(t *testing.T) {
	ds := sample(t)
	added, err := ds.WithColumn("flag", []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "diagnosis", "mean_radius", "flag"}, added.Columns())
	assert.Equal(t, "z", added.Row(2)[3])
	assert.Equal(t, 3, ds.Width())

	replaced, err := ds.WithColumn("diagnosis", []string{"a", "b", "c"})
	require.NoError(t, err)
	col, _ := replaced.Column("diagnosis")
	assert.Equal(t, []string{"a", "b", "c"}, col)

	_, err = ds.WithColumn("flag", []string{"x"})
	assert.ErrorIs(t, err, ErrColumnCount)
}
