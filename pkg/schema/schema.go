package schema

import (
	"errors"
	"fmt"
	"slices"

	"cancerml/pkg/data"
)

// ErrColumnMismatch reports a configuration whose columns differ from the expected list.
var ErrColumnMismatch = errors.New("configuration columns do not match expected columns")

// Dataset-wide rule names.
const (
	RuleNoDuplicateRows = "no_duplicate_rows"
	RuleNoEmptyRows     = "no_empty_rows"
)

// Schema is an immutable, ordered set of column rules plus dataset-wide rules.
type Schema struct {
	columns []ColumnConfig
	byName  map[string]int
}

// FromTable parses a configuration table and builds a Schema from it.
func FromTable(table *data.Dataset, expected []string) (*Schema, error) {
	configs, err := ParseConfig(table)
	if err != nil {
		return nil, err
	}
	return Build(configs, expected)
}

// Build checks configs against the expected column list, element for element,
// and returns the resulting Schema.
func Build(configs []ColumnConfig, expected []string) (*Schema, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: data configuration is empty", data.ErrInvalidInput)
	}
	if len(configs) != len(expected) {
		return nil, fmt.Errorf("%w: configuration has %d columns, expected %d",
			ErrColumnMismatch, len(configs), len(expected))
	}
	for i, cfg := range configs {
		if cfg.Name != expected[i] {
			return nil, fmt.Errorf("%w: position %d is %q, expected %q",
				ErrColumnMismatch, i, cfg.Name, expected[i])
		}
	}

	s := &Schema{byName: make(map[string]int, len(configs))}
	for i, cfg := range configs {
		if _, dup := s.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("%w: column %q configured twice", data.ErrInvalidInput, cfg.Name)
		}
		if err := checkConfig(cfg); err != nil {
			return nil, err
		}
		s.byName[cfg.Name] = i
		s.columns = append(s.columns, clone(cfg))
	}
	return s, nil
}

func checkConfig(cfg ColumnConfig) error {
	switch cfg.Type {
	case Int, Float, Str:
	default:
		return fmt.Errorf("%w: column %q has unknown type %q (want int, float or str)",
			data.ErrInvalidInput, cfg.Name, cfg.Type)
	}
	if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
		return fmt.Errorf("%w: column %q has min %g greater than max %g",
			data.ErrInvalidInput, cfg.Name, *cfg.Min, *cfg.Max)
	}
	if (cfg.Min != nil || cfg.Max != nil) && cfg.Type == Str {
		return fmt.Errorf("%w: column %q is a string column and cannot have a range", data.ErrInvalidInput, cfg.Name)
	}
	if f := cfg.MaxNullFraction; f != nil && (*f < 0 || *f > 1) {
		return fmt.Errorf("%w: column %q max_nullable %g is outside [0, 1]", data.ErrInvalidInput, cfg.Name, *f)
	}
	return nil
}

// Columns returns the configured column names in order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Column returns a copy of the configuration of the named column.
func (s *Schema) Column(name string) (ColumnConfig, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ColumnConfig{}, false
	}
	return clone(s.columns[i]), true
}

func clone(cfg ColumnConfig) ColumnConfig {
	cfg.Categories = slices.Clone(cfg.Categories)
	for _, p := range []**float64{&cfg.Min, &cfg.Max, &cfg.MaxNullFraction} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return cfg
}
