package expect

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ColumnsExist builds one ColumnToExist per column.
func ColumnsExist(columns []string) ([]Expectation, error) {
	if columns == nil {
		return nil, fmt.Errorf("%w: columns must be a list", ErrConfig)
	}
	out := make([]Expectation, 0, len(columns))
	for _, c := range columns {
		if err := checkColumnName(c); err != nil {
			return nil, err
		}
		out = append(out, ColumnToExist(c))
	}
	return out, nil
}

// ValueSets builds one DistinctValuesToContainSet per column, in column name order.
func ValueSets(sets map[string][]string) ([]Expectation, error) {
	if sets == nil {
		return nil, fmt.Errorf("%w: value sets must be a mapping", ErrConfig)
	}
	out := make([]Expectation, 0, len(sets))
	for _, c := range slices.Sorted(maps.Keys(sets)) {
		if err := checkColumnName(c); err != nil {
			return nil, err
		}
		out = append(out, DistinctValuesToContainSet(c, sets[c]))
	}
	return out, nil
}

// Types builds one ValuesToBeOfType per column, in column name order.
func Types(types map[string]string) ([]Expectation, error) {
	if types == nil {
		return nil, fmt.Errorf("%w: column types must be a mapping", ErrConfig)
	}
	out := make([]Expectation, 0, len(types))
	for _, c := range slices.Sorted(maps.Keys(types)) {
		if err := checkColumnName(c); err != nil {
			return nil, err
		}
		e, err := ValuesToBeOfType(c, types[c])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// NotNull builds one ValuesToNotBeNull per column from a tolerated null
// fraction: a tolerance of 0.3 allows up to 30% nulls.
func NotNull(tolerance map[string]float64) ([]Expectation, error) {
	if tolerance == nil {
		return nil, fmt.Errorf("%w: null tolerances must be a mapping", ErrConfig)
	}
	out := make([]Expectation, 0, len(tolerance))
	for _, c := range slices.Sorted(maps.Keys(tolerance)) {
		if err := checkColumnName(c); err != nil {
			return nil, err
		}
		tol := tolerance[c]
		if !(tol >= 0 && tol <= 1) {
			return nil, fmt.Errorf("%w: column %q null tolerance %v must be within [0, 1]", ErrConfig, c, tol)
		}
		e, err := ValuesToNotBeNull(c, 1-tol)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Ranges builds one ValuesToBeBetween per column, in column name order.
func Ranges(ranges map[string]Range) ([]Expectation, error) {
	if ranges == nil {
		return nil, fmt.Errorf("%w: ranges must be a mapping", ErrConfig)
	}
	out := make([]Expectation, 0, len(ranges))
	for _, c := range slices.Sorted(maps.Keys(ranges)) {
		if err := checkColumnName(c); err != nil {
			return nil, err
		}
		e, err := ValuesToBeBetween(c, ranges[c])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func checkColumnName(c string) error {
	if strings.TrimSpace(c) == "" {
		return fmt.Errorf("%w: column names must not be empty", ErrConfig)
	}
	return nil
}
