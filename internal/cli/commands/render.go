package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"cancerml/pkg/schema"
	"cancerml/pkg/splitcheck"
	"cancerml/pkg/store"
	"cancerml/pkg/tune"
)

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

func renderFailures(w io.Writer, e *schema.Error) {
	t := newTable(w, "Column", "Check", "Detail")
	for _, f := range e.Failures {
		col := f.Column
		if col == "" {
			col = "(dataset)"
		}
		t.AppendRow(table.Row{col, f.Check, f.Detail})
	}
	t.Render()
}

func renderSplitReport(w io.Writer, r *splitcheck.Report) {
	if r == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "train rows: %d, test rows: %d\n", r.TrainRows, r.TestRows)
	t := newTable(w, "Check", "Value", "Threshold", "Subject", "Passed")
	for _, res := range r.Results {
		t.AppendRow(table.Row{res.Check, fmt.Sprintf("%.4f", res.Value), res.Threshold, res.Subject, res.Passed})
	}
	t.Render()
}

func renderScores(w io.Writer, scores []tune.Score, best int) {
	t := newTable(w, "k", "Mean", "Std", "SEM", "")
	for _, s := range scores {
		mark := ""
		if s.K == best {
			mark = "best"
		}
		t.AppendRow(table.Row{s.K, fmt.Sprintf("%.4f", s.Mean), fmt.Sprintf("%.4f", s.Std), fmt.Sprintf("%.4f", s.SEM), mark})
	}
	t.Render()
}

func renderRuns(w io.Writer, runs []*store.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "(no runs)")
		return
	}
	t := newTable(w, "ID", "Stage", "Status", "Started", "Duration", "Error")
	for _, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{r.ID, r.Stage, r.Status, r.StartedAt.Local().Format(time.DateTime), duration, r.Error})
	}
	t.Render()
}
