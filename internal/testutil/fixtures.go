package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// NamesDocument is an abridged wdbc.names attribute description.
const NamesDocument = `1. Title: Wisconsin Diagnostic Breast Cancer (WDBC)

2. Source Information

a) Creators:

	Dr. William H. Wolberg, General Surgery Dept., University of
	Wisconsin,  Clinical Sciences Center, Madison, WI 53792

# Features are computed from a digitized image of a fine needle
# aspirate (FNA) of a breast mass.

5. Number of instances: 569

6. Number of attributes: 32 (ID, diagnosis, 30 real-valued input features)

7. Attribute information

1) ID number
2) Diagnosis (M = malignant, B = benign)
3-32)

Ten real-valued features are computed for each cell nucleus:

	a) radius (mean of distances from center to points on the perimeter)
	b) texture (standard deviation of gray-scale values)
	c) perimeter
	d) area
	e) smoothness (local variation in radius lengths)
	f) compactness (perimeter^2 / area - 1.0)
	g) concavity (severity of concave portions of the contour)
	h) concave points (number of concave portions of the contour)
	i) symmetry
	j) fractal dimension ("coastline approximation" - 1)

The mean, standard error, and "worst" or largest (mean of the three
largest values) of these features were computed for each image,
resulting in 30 features.

8. Missing attribute values: none

9. Class distribution: 357 benign, 212 malignant
`

// BaseFeatures are the ten per-nucleus measurements of NamesDocument.
var BaseFeatures = []string{
	"radius", "texture", "perimeter", "area", "smoothness",
	"compactness", "concavity", "concave_points", "symmetry", "fractal_dimension",
}

// ColumnNames returns the 32 raw column names derived from NamesDocument.
func ColumnNames() []string {
	out := []string{"id_number", "diagnosis"}
	for _, stat := range []string{"mean", "se", "max"} {
		for _, f := range BaseFeatures {
			out = append(out, stat+"_"+f)
		}
	}
	return out
}

// SyntheticRows generates n raw WDBC-shaped records: an integer id, an M/B code
// and 30 positive measurements whose centre depends on the class.
// Roughly a third of the records are malignant.
func SyntheticRows(n int, seed int64) [][]string {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]string, n)
	for i := range n {
		malignant := i%3 == 0
		row := make([]string, 0, 32)
		row = append(row, strconv.Itoa(842302+i))
		if malignant {
			row = append(row, "M")
		} else {
			row = append(row, "B")
		}
		for j := range 30 {
			centre := 10.0 + float64(j)
			if malignant {
				centre += 4
			}
			v := centre + rng.NormFloat64()
			row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
		}
		rows[i] = row
	}
	return rows
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteRows writes rows as comma-separated lines, optionally preceded by a header.
func WriteRows(t testing.TB, dir, name string, header []string, rows [][]string) string {
	t.Helper()
	var b strings.Builder
	if header != nil {
		b.WriteString(strings.Join(header, ","))
		b.WriteByte('\n')
	}
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteByte('\n')
	}
	return WriteFile(t, dir, name, b.String())
}

// SchemaConfig renders a data configuration table for the cleaned WDBC columns
// that the output of SyntheticRows satisfies.
func SchemaConfig() string {
	var b strings.Builder
	b.WriteString("column,type,min,max,category,max_nullable\n")
	b.WriteString("diagnosis,str,,,\"Malignant,Benign\",0\n")
	for _, name := range ColumnNames()[2:] {
		fmt.Fprintf(&b, "%s,float,0,100,,0.1\n", name)
	}
	return b.String()
}
