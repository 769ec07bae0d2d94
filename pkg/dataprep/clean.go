package dataprep

import (
	"fmt"
	"log/slog"

	"cancerml/pkg/data"
)

// CleanOptions controls Clean.
type CleanOptions struct {
	// DropColumns are removed from the output. Each one must exist.
	DropColumns []string
	// LabelColumn is relabelled through Relabel.
	LabelColumn string
	// Relabel maps raw label codes to readable labels. Unmapped values are kept.
	Relabel map[string]string
	Logger  *slog.Logger
}

// DefaultCleanOptions drops the identifier and spells out the diagnosis codes.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		DropColumns: []string{"id"},
		LabelColumn: "diagnosis",
		Relabel:     map[string]string{"M": "Malignant", "B": "Benign"},
	}
}

// Clean drops the configured columns and relabels the label column.
// Cleaning an already-cleaned dataset fails because the dropped columns are gone.
func Clean(ds *data.Dataset, opts CleanOptions) (*data.Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: imported data must be a dataset", data.ErrInvalidInput)
	}
	if opts.DropColumns == nil {
		return nil, fmt.Errorf("%w: drop columns must be a list", data.ErrInvalidInput)
	}
	if opts.Relabel == nil {
		return nil, fmt.Errorf("%w: relabel must be a mapping", data.ErrInvalidInput)
	}
	if opts.LabelColumn == "" {
		return nil, fmt.Errorf("%w: label column must be set", data.ErrInvalidInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cleaned, err := ds.Drop(opts.DropColumns...)
	if err != nil {
		return nil, err
	}
	unmapped := 0
	cleaned, err = cleaned.Replace(opts.LabelColumn, func(v string) string {
		if to, ok := opts.Relabel[v]; ok {
			return to
		}
		unmapped++
		return v
	})
	if err != nil {
		return nil, err
	}
	if unmapped > 0 {
		logger.Warn("label values without a mapping were kept", "column", opts.LabelColumn, "count", unmapped)
	}
	logger.Debug("cleaned dataset", "dropped", opts.DropColumns, "rows", cleaned.Len(), "columns", cleaned.Width())
	return cleaned, nil
}
