package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerml/internal/testutil"
)

func TestLoadRaw(t *testing.T) {
	dir := t.TempDir()
	names := testutil.ColumnNames()
	path := testutil.WriteRows(t, dir, "wdbc.data", nil, testutil.SyntheticRows(12, 1))

	ds, err := LoadRaw(path, names)
	require.NoError(t, err)
	assert.Equal(t, 12, ds.Len())
	assert.Equal(t, names, ds.Columns())
	assert.Equal(t, "wdbc", ds.Name)

	diag, err := ds.Column("diagnosis")
	require.NoError(t, err)
	assert.Equal(t, "M", diag[0])
	assert.Equal(t, "B", diag[1])
}

func TestLoadRaw_Errors(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteRows(t, dir, "wdbc.data", nil, testutil.SyntheticRows(3, 1))
	ragged := testutil.WriteFile(t, dir, "ragged.data", "1,M,2.0\n2,B\n")
	empty := testutil.WriteFile(t, dir, "empty.data", "")

	tests := []struct {
		name    string
		path    string
		names   []string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.data"), names: testutil.ColumnNames(), wantErr: ErrNotFound},
		{name: "too few names", path: good, names: []string{"a", "b", "c"}, wantErr: ErrColumnCount},
		{name: "ragged records", path: ragged, names: []string{"id", "diagnosis", "x"}, wantErr: ErrColumnCount},
		{name: "no names", path: good, names: nil, wantErr: ErrInvalidInput},
		{name: "empty file", path: empty, names: []string{"a"}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRaw(tt.path, tt.names)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds, err := New("cleaned", []string{"diagnosis", "mean_radius"}, [][]string{
		{"Malignant", "17.99"},
		{"Benign", "13.54"},
	})
	require.NoError(t, err)

	path, err := WriteCSV(ds, dir, "cleaned.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cleaned.csv"), path)

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Columns(), back.Columns())
	assert.Equal(t, ds.Rows(), back.Rows())
}

func TestWriteCSV_Errors(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "file.txt", "x")
	ds, err := New("d", []string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = WriteCSV(ds, filepath.Join(dir, "missing"), "out.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = WriteCSV(ds, file, "out.csv")
	assert.ErrorIs(t, err, ErrNotDir)

	_, err = WriteCSV(ds, dir, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = WriteCSV(nil, dir, "out.csv")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
