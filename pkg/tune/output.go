package tune

import (
	"fmt"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cancerml/pkg/data"
)

// DropColumnFeature is the column of a drop file listing feature names.
const DropColumnFeature = "feats_to_drop"

// DropColumnsFrom reads the feature names listed in the feats_to_drop column
// of a CSV file. An empty path means nothing to drop.
func DropColumnsFrom(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	ds, err := data.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	col, err := ds.Column(DropColumnFeature)
	if err != nil {
		return nil, fmt.Errorf("columns to drop: %w", err)
	}
	out := make([]string, 0, len(col))
	for _, c := range col {
		if !data.IsNull(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// WriteScores writes one CSV row per grid point to dir/filename.
func WriteScores(scores []Score, dir, filename string) (string, error) {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			strconv.Itoa(s.K), format(s.Mean), format(s.Std),
			format(s.SEM), format(s.Lower), format(s.Upper),
		}
	}
	ds, err := data.New("cv_scores", []string{
		"n_neighbors", "mean_test_score", "std_test_score",
		"sem_test_score", "sem_test_score_lower", "sem_test_score_upper",
	}, rows)
	if err != nil {
		return "", err
	}
	return data.WriteCSV(ds, dir, filename)
}

// semBars adapts scores to plotter.XYer and plotter.YErrorer with bars of
// half a standard error either side of the mean.
type semBars []Score

func (b semBars) Len() int                        { return len(b) }
func (b semBars) XY(i int) (float64, float64)     { return float64(b[i].K), b[i].Mean }
func (b semBars) YError(i int) (float64, float64) { return b[i].SEM / 2, b[i].SEM / 2 }

// PlotScores draws mean score against k as a line with points and standard
// error bars, and saves it as an image to dir/filename. The format follows
// the file extension.
func PlotScores(scores []Score, beta float64, dir, filename string) (string, error) {
	if len(scores) == 0 {
		return "", fmt.Errorf("%w: no scores to plot", data.ErrInvalidInput)
	}
	if err := data.EnsureDir(dir); err != nil {
		return "", err
	}

	p := plot.New()
	p.X.Label.Text = "Neighbors"
	p.Y.Label.Text = fmt.Sprintf("F%g score (beta = %g)", beta, beta)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(scores))
	for i, s := range scores {
		pts[i] = plotter.XY{X: float64(s.K), Y: s.Mean}
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("score line: %w", err)
	}
	l.LineStyle.Width = vg.Points(1.5)

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("score points: %w", err)
	}
	sc.Shape = draw.CircleGlyph{}
	sc.Radius = vg.Points(2.5)

	bars, err := plotter.NewYErrorBars(semBars(scores))
	if err != nil {
		return "", fmt.Errorf("error bars: %w", err)
	}
	p.Add(l, sc, bars)

	path := filepath.Join(dir, filename)
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return path, nil
}
