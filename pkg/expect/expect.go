// Package expect evaluates individually named data-quality expectations
// against a dataset. Unlike schema validation, a run stops at the first
// expectation that does not hold.
package expect

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"cancerml/pkg/data"
)

var (
	// ErrValidation is matched by every failed expectation.
	ErrValidation = errors.New("expectation failed")

	// ErrConfig reports a malformed expectation definition.
	ErrConfig = errors.New("invalid expectation configuration")
)

// Expectation kinds.
const (
	KindColumnToExist       = "expect_column_to_exist"
	KindDistinctValuesInSet = "expect_column_distinct_values_to_contain_set"
	KindValuesToBeOfType    = "expect_column_values_to_be_of_type"
	KindValuesToNotBeNull   = "expect_column_values_to_not_be_null"
	KindValuesToBeBetween   = "expect_column_values_to_be_between"
)

// Result is the outcome of evaluating one expectation.
type Result struct {
	Success bool
	// Observed summarises what was found, for reporting.
	Observed string
}

// Expectation is a single parameterised rule about one column.
type Expectation interface {
	// Kind returns the expectation name, e.g. "expect_column_to_exist".
	Kind() string

	// Column returns the column the expectation applies to.
	Column() string

	// Validate evaluates the expectation. A missing column is a failed
	// result, never a panic.
	Validate(ds *data.Dataset) Result
}

// ValidationError names the column and expectation that failed.
type ValidationError struct {
	Column   string
	Kind     string
	Observed string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation for column '%s' failed: the data did not meet the expectation %s", e.Column, e.Kind)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Run evaluates exps in order and returns a *ValidationError for the first
// one that fails.
func Run(ds *data.Dataset, exps ...Expectation) error {
	if ds == nil {
		return fmt.Errorf("%w: data must be a dataset", data.ErrInvalidInput)
	}
	for _, e := range exps {
		if r := e.Validate(ds); !r.Success {
			return &ValidationError{Column: e.Column(), Kind: e.Kind(), Observed: r.Observed}
		}
	}
	return nil
}

func missing(col string) Result {
	return Result{Observed: fmt.Sprintf("column %q not found", col)}
}

type columnToExist struct{ column string }

// ColumnToExist expects the dataset to have the named column.
func ColumnToExist(column string) Expectation { return columnToExist{column: column} }

func (e columnToExist) Kind() string   { return KindColumnToExist }
func (e columnToExist) Column() string { return e.column }

func (e columnToExist) Validate(ds *data.Dataset) Result {
	if !ds.HasColumn(e.column) {
		return missing(e.column)
	}
	return Result{Success: true}
}

type distinctValuesToContainSet struct {
	column string
	set    []string
}

// DistinctValuesToContainSet expects every value of set to occur in the column.
// Other values may occur as well.
func DistinctValuesToContainSet(column string, set []string) Expectation {
	return distinctValuesToContainSet{column: column, set: slices.Clone(set)}
}

func (e distinctValuesToContainSet) Kind() string   { return KindDistinctValuesInSet }
func (e distinctValuesToContainSet) Column() string { return e.column }

func (e distinctValuesToContainSet) Validate(ds *data.Dataset) Result {
	values, err := ds.Column(e.column)
	if err != nil {
		return missing(e.column)
	}
	seen := make(map[string]bool)
	for _, v := range values {
		if !data.IsNull(v) {
			seen[v] = true
		}
	}
	var absent []string
	for _, want := range e.set {
		if !seen[want] {
			absent = append(absent, want)
		}
	}
	if len(absent) > 0 {
		return Result{Observed: fmt.Sprintf("missing values %v", absent)}
	}
	return Result{Success: true}
}

type valuesToBeOfType struct {
	column string
	typ    string
}

// canonicalType maps accepted type spellings onto string, number or integer.
func canonicalType(t string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "string", "str":
		return "string", true
	case "number", "float":
		return "number", true
	case "int", "integer":
		return "integer", true
	}
	return "", false
}

// ValuesToBeOfType expects the column to hold values of typ: "string" (or
// "str"), "number" (or "float") or "integer" (or "int"). A string column is
// one that is not entirely numeric.
func ValuesToBeOfType(column, typ string) (Expectation, error) {
	c, ok := canonicalType(typ)
	if !ok {
		return nil, fmt.Errorf("%w: column %q has unknown type %q", ErrConfig, column, typ)
	}
	return valuesToBeOfType{column: column, typ: c}, nil
}

func (e valuesToBeOfType) Kind() string   { return KindValuesToBeOfType }
func (e valuesToBeOfType) Column() string { return e.column }

func (e valuesToBeOfType) Validate(ds *data.Dataset) Result {
	if !ds.HasColumn(e.column) {
		return missing(e.column)
	}
	if e.typ == "string" {
		if ds.IsNumeric(e.column) {
			return Result{Observed: "column is numeric"}
		}
		return Result{Success: true}
	}
	vals, valid, err := ds.Floats(e.column)
	if err != nil {
		return Result{Observed: err.Error()}
	}
	if e.typ == "integer" {
		for i, v := range vals {
			if valid[i] && v != math.Trunc(v) {
				return Result{Observed: fmt.Sprintf("row %d value %s is not an integer", i, strconv.FormatFloat(v, 'g', -1, 64))}
			}
		}
	}
	return Result{Success: true}
}

type valuesToNotBeNull struct {
	column string
	mostly float64
}

// ValuesToNotBeNull expects at least the fraction mostly of the column to be
// non-null. mostly must lie in [0, 1].
func ValuesToNotBeNull(column string, mostly float64) (Expectation, error) {
	if math.IsNaN(mostly) || mostly < 0 || mostly > 1 {
		return nil, fmt.Errorf("%w: column %q mostly %v must be within [0, 1]", ErrConfig, column, mostly)
	}
	return valuesToNotBeNull{column: column, mostly: mostly}, nil
}

func (e valuesToNotBeNull) Kind() string   { return KindValuesToNotBeNull }
func (e valuesToNotBeNull) Column() string { return e.column }

func (e valuesToNotBeNull) Validate(ds *data.Dataset) Result {
	values, err := ds.Column(e.column)
	if err != nil {
		return missing(e.column)
	}
	if len(values) == 0 {
		return Result{Success: true}
	}
	present := 0
	for _, v := range values {
		if !data.IsNull(v) {
			present++
		}
	}
	frac := float64(present) / float64(len(values))
	return Result{Success: frac >= e.mostly, Observed: fmt.Sprintf("%.3f of values are non-null", frac)}
}

// Range bounds a numeric column. A nil bound is unbounded; bounds are
// inclusive unless the matching strict flag is set.
type Range struct {
	Min, Max             *float64
	StrictMin, StrictMax bool
}

func (r Range) contains(v float64) bool {
	if r.Min != nil && (v < *r.Min || (r.StrictMin && v == *r.Min)) {
		return false
	}
	if r.Max != nil && (v > *r.Max || (r.StrictMax && v == *r.Max)) {
		return false
	}
	return true
}

type valuesToBeBetween struct {
	column string
	rng    Range
}

// ValuesToBeBetween expects every non-null value of the column to fall within r.
func ValuesToBeBetween(column string, r Range) (Expectation, error) {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return nil, fmt.Errorf("%w: column %q has min %g greater than max %g", ErrConfig, column, *r.Min, *r.Max)
	}
	return valuesToBeBetween{column: column, rng: r}, nil
}

func (e valuesToBeBetween) Kind() string   { return KindValuesToBeBetween }
func (e valuesToBeBetween) Column() string { return e.column }

func (e valuesToBeBetween) Validate(ds *data.Dataset) Result {
	if !ds.HasColumn(e.column) {
		return missing(e.column)
	}
	vals, valid, err := ds.Floats(e.column)
	if err != nil {
		return Result{Observed: err.Error()}
	}
	outside := 0
	for i, v := range vals {
		if valid[i] && !e.rng.contains(v) {
			outside++
		}
	}
	if outside > 0 {
		return Result{Observed: fmt.Sprintf("%d value(s) out of range", outside)}
	}
	return Result{Success: true}
}
