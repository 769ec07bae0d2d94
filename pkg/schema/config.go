// Package schema builds column schemas from a configuration table and validates
// datasets against them, collecting every violation before reporting.
package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cancerml/pkg/data"
)

// ColumnType is the declared value type of a column.
type ColumnType string

const (
	Int   ColumnType = "int"
	Float ColumnType = "float"
	Str   ColumnType = "str"
)

// RequiredFields are the columns of a configuration table.
var RequiredFields = []string{"column", "type", "min", "max", "category", "max_nullable"}

// ColumnConfig describes the rules for one column. Nil pointers and an empty
// Categories slice mean the rule is not applied.
type ColumnConfig struct {
	Name            string
	Type            ColumnType
	Min             *float64
	Max             *float64
	StrictMin       bool
	StrictMax       bool
	Categories      []string
	MaxNullFraction *float64
}

// ReadConfig loads and parses a configuration table from a CSV file.
func ReadConfig(path string) ([]ColumnConfig, error) {
	table, err := data.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(table)
}

// ParseConfig converts a configuration table into column configs.
func ParseConfig(table *data.Dataset) ([]ColumnConfig, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: data configuration is empty", data.ErrInvalidInput)
	}
	if err := checkFields(table.Columns()); err != nil {
		return nil, err
	}

	idx := func(f string) int { return table.Index(f) }
	out := make([]ColumnConfig, 0, table.Len())
	for i := range table.Len() {
		row := table.Row(i)
		cfg := ColumnConfig{
			Name: row[idx("column")],
			Type: ColumnType(strings.ToLower(row[idx("type")])),
		}
		var err error
		if cfg.Min, err = optionalFloat(row[idx("min")]); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s) min: %v", data.ErrInvalidInput, i+1, cfg.Name, err)
		}
		if cfg.Max, err = optionalFloat(row[idx("max")]); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s) max: %v", data.ErrInvalidInput, i+1, cfg.Name, err)
		}
		if cfg.MaxNullFraction, err = optionalFloat(row[idx("max_nullable")]); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s) max_nullable: %v", data.ErrInvalidInput, i+1, cfg.Name, err)
		}
		if cat := strings.TrimSpace(row[idx("category")]); cat != "" {
			for _, c := range strings.Split(cat, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cfg.Categories = append(cfg.Categories, c)
				}
			}
		}
		out = append(out, cfg)
	}
	return out, nil
}

func checkFields(cols []string) error {
	var missing, extra []string
	for _, f := range RequiredFields {
		if !slices.Contains(cols, f) {
			missing = append(missing, f)
		}
	}
	for _, c := range cols {
		if !slices.Contains(RequiredFields, c) {
			extra = append(extra, c)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return fmt.Errorf("%w: data configuration must have exactly the columns %v (missing %v, unexpected %v)",
		data.ErrInvalidInput, RequiredFields, missing, extra)
}

func optionalFloat(s string) (*float64, error) {
	if data.IsNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
