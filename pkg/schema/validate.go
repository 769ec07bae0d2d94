package schema

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"cancerml/pkg/data"
)

// ErrValidation is matched by every schema validation failure.
var ErrValidation = errors.New("schema validation failed")

// Check names used in Failure.Check.
const (
	CheckColumns  = "column_set"
	CheckType     = "dtype"
	CheckRange    = "value_range"
	CheckCategory = "isin"
	CheckNulls    = "max_nullable"
)

// Failure is one violated rule.
type Failure struct {
	Column string // empty for dataset-wide rules
	Check  string
	Detail string
}

func (f Failure) String() string {
	if f.Column == "" {
		return fmt.Sprintf("%s: %s", f.Check, f.Detail)
	}
	return fmt.Sprintf("column %q: %s: %s", f.Column, f.Check, f.Detail)
}

// Error aggregates every failure found in one validation pass.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema validation failed with %d error(s):", len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *Error) Is(target error) bool { return target == ErrValidation }

// Unwrap exposes each failure as its own error.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = errors.New(f.String())
	}
	return errs
}

// Validate applies every rule of s to ds and reports all violations at once.
// A nil return means the dataset conforms.
func (s *Schema) Validate(ds *data.Dataset) error {
	if ds == nil {
		return fmt.Errorf("%w: dataset must not be nil", data.ErrInvalidInput)
	}
	var failures []Failure

	cols := ds.Columns()
	for _, c := range s.columns {
		if !slices.Contains(cols, c.Name) {
			failures = append(failures, Failure{Column: c.Name, Check: CheckColumns, Detail: "column is missing"})
		}
	}
	for _, c := range cols {
		if _, ok := s.byName[c]; !ok {
			failures = append(failures, Failure{Column: c, Check: CheckColumns, Detail: "column is not in the schema"})
		}
	}

	for _, cfg := range s.columns {
		values, err := ds.Column(cfg.Name)
		if err != nil {
			continue
		}
		failures = append(failures, checkColumn(cfg, values)...)
	}
	failures = append(failures, checkRows(ds)...)

	if len(failures) == 0 {
		return nil
	}
	return &Error{Failures: failures}
}

func checkColumn(cfg ColumnConfig, values []string) []Failure {
	var out []Failure
	fail := func(check, format string, args ...any) {
		out = append(out, Failure{Column: cfg.Name, Check: check, Detail: fmt.Sprintf(format, args...)})
	}

	nulls, badType, outOfRange, badCategory := 0, 0, 0, 0
	var firstBadType, firstOutOfRange, firstBadCategory string
	for _, v := range values {
		if data.IsNull(v) {
			nulls++
			continue
		}
		num, ok := conforms(cfg.Type, v)
		if !ok {
			if badType == 0 {
				firstBadType = v
			}
			badType++
			continue
		}
		if cfg.Type != Str && !inRange(cfg, num) {
			if outOfRange == 0 {
				firstOutOfRange = v
			}
			outOfRange++
		}
		if len(cfg.Categories) > 0 && !slices.Contains(cfg.Categories, v) {
			if badCategory == 0 {
				firstBadCategory = v
			}
			badCategory++
		}
	}

	if badType > 0 {
		fail(CheckType, "%d value(s) are not of type %s (e.g. %q)", badType, cfg.Type, firstBadType)
	}
	if outOfRange > 0 {
		fail(CheckRange, "%d value(s) outside %s (e.g. %s)", outOfRange, describeRange(cfg), firstOutOfRange)
	}
	if badCategory > 0 {
		fail(CheckCategory, "%d value(s) not in %v (e.g. %q)", badCategory, cfg.Categories, firstBadCategory)
	}
	if cfg.MaxNullFraction != nil && len(values) > 0 {
		frac := float64(nulls) / float64(len(values))
		if frac > *cfg.MaxNullFraction {
			fail(CheckNulls, "null fraction %.3f exceeds %g", frac, *cfg.MaxNullFraction)
		}
	}
	return out
}

// conforms reports whether v parses as t, returning the numeric value for numeric types.
func conforms(t ColumnType, v string) (float64, bool) {
	switch t {
	case Str:
		return 0, true
	case Int:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return float64(n), true
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return f, true
	default:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
}

func inRange(cfg ColumnConfig, v float64) bool {
	if cfg.Min != nil {
		if v < *cfg.Min || (cfg.StrictMin && v == *cfg.Min) {
			return false
		}
	}
	if cfg.Max != nil {
		if v > *cfg.Max || (cfg.StrictMax && v == *cfg.Max) {
			return false
		}
	}
	return true
}

func describeRange(cfg ColumnConfig) string {
	lo, hi := "-inf", "+inf"
	open, closing := "(", ")"
	if cfg.Min != nil {
		lo = strconv.FormatFloat(*cfg.Min, 'g', -1, 64)
		if !cfg.StrictMin {
			open = "["
		}
	}
	if cfg.Max != nil {
		hi = strconv.FormatFloat(*cfg.Max, 'g', -1, 64)
		if !cfg.StrictMax {
			closing = "]"
		}
	}
	return open + lo + ", " + hi + closing
}

func checkRows(ds *data.Dataset) []Failure {
	var out []Failure
	seen := make(map[string]int, ds.Len())
	dups, empty := 0, 0
	for i := range ds.Len() {
		key := ds.RowKey(i)
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = i
		}
		allNull := ds.Width() > 0
		for _, v := range ds.Row(i) {
			if !data.IsNull(v) {
				allNull = false
				break
			}
		}
		if allNull {
			empty++
		}
	}
	if dups > 0 {
		out = append(out, Failure{Check: RuleNoDuplicateRows, Detail: fmt.Sprintf("%d row(s) duplicate an earlier row", dups)})
	}
	if empty > 0 {
		out = append(out, Failure{Check: RuleNoEmptyRows, Detail: fmt.Sprintf("%d row(s) are entirely null", empty)})
	}
	return out
}
