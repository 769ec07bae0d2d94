package expect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"cancerml/pkg/data"
)

// Suite sections, evaluated in this order.
const (
	SectionColumnsExist = "columns_exist"
	SectionValueSets    = "value_sets"
	SectionTypes        = "types"
	SectionNotNull      = "not_null"
	SectionRanges       = "ranges"
)

var sectionOrder = []string{SectionColumnsExist, SectionValueSets, SectionTypes, SectionNotNull, SectionRanges}

// ReadSuite loads an expectation suite from a YAML file.
func ReadSuite(path string) ([]Expectation, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: the expectation file %s does not exist", data.ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSuite(f)
}

// LoadSuite parses a YAML expectation suite:
//
//	columns_exist: [diagnosis, mean_radius]
//	value_sets:
//	  diagnosis: [Malignant, Benign]
//	types:
//	  diagnosis: string
//	  mean_radius: number
//	not_null:
//	  mean_radius: 0.3      # tolerated null fraction
//	ranges:
//	  mean_radius: [5, 25, false, false]  # min, max, strict_min, strict_max
//
// Sections are evaluated in the order above; entries keep document order.
// An empty document yields an empty suite.
func LoadSuite(r io.Reader) ([]Expectation, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expectation suite must be a mapping", ErrConfig)
	}

	sections := make(map[string]*yaml.Node)
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		name, err := stringKey(key, "suite")
		if err != nil {
			return nil, err
		}
		switch name {
		case SectionColumnsExist, SectionValueSets, SectionTypes, SectionNotNull, SectionRanges:
			sections[name] = val
		default:
			return nil, fmt.Errorf("%w: unknown section %q (line %d)", ErrConfig, name, key.Line)
		}
	}

	var out []Expectation
	for _, name := range sectionOrder {
		node, ok := sections[name]
		if !ok {
			continue
		}
		exps, err := parseSection(name, node)
		if err != nil {
			return nil, err
		}
		out = append(out, exps...)
	}
	return out, nil
}

func parseSection(name string, node *yaml.Node) ([]Expectation, error) {
	if name == SectionColumnsExist {
		if node.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: %s must be a list", ErrConfig, name)
		}
		cols := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			c, err := stringScalar(item, name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
		return ColumnsExist(cols)
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping", ErrConfig, name)
	}
	var out []Expectation
	for i := 0; i < len(node.Content); i += 2 {
		col, err := stringKey(node.Content[i], name)
		if err != nil {
			return nil, err
		}
		if err := checkColumnName(col); err != nil {
			return nil, err
		}
		e, err := parseEntry(name, col, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseEntry(section, col string, val *yaml.Node) (Expectation, error) {
	switch section {
	case SectionValueSets:
		if val.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: %s.%s must be a list", ErrConfig, section, col)
		}
		set := make([]string, 0, len(val.Content))
		for _, item := range val.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: %s.%s values must be scalars", ErrConfig, section, col)
			}
			set = append(set, item.Value)
		}
		return DistinctValuesToContainSet(col, set), nil

	case SectionTypes:
		typ, err := stringScalar(val, section+"."+col)
		if err != nil {
			return nil, err
		}
		return ValuesToBeOfType(col, typ)

	case SectionNotNull:
		tol, isNull, err := number(val, section+"."+col)
		if err != nil {
			return nil, err
		}
		if isNull || tol < 0 || tol > 1 {
			return nil, fmt.Errorf("%w: %s.%s tolerance must be a number within [0, 1]", ErrConfig, section, col)
		}
		return ValuesToNotBeNull(col, 1-tol)

	default:
		r, err := parseRange(val, section+"."+col)
		if err != nil {
			return nil, err
		}
		return ValuesToBeBetween(col, r)
	}
}

// parseRange reads a [min, max, strict_min, strict_max] list.
func parseRange(val *yaml.Node, where string) (Range, error) {
	if val.Kind != yaml.SequenceNode || len(val.Content) != 4 {
		return Range{}, fmt.Errorf("%w: %s must be a list of exactly four items [min, max, strict_min, strict_max]", ErrConfig, where)
	}
	var r Range
	for i, dst := range []**float64{&r.Min, &r.Max} {
		v, isNull, err := number(val.Content[i], where)
		if err != nil {
			return Range{}, err
		}
		if !isNull {
			*dst = &v
		}
	}
	for i, dst := range []*bool{&r.StrictMin, &r.StrictMax} {
		item := val.Content[2+i]
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!bool" {
			return Range{}, fmt.Errorf("%w: %s item %d must be a boolean", ErrConfig, where, 3+i)
		}
		b, err := strconv.ParseBool(item.Value)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %s item %d: %v", ErrConfig, where, 3+i, err)
		}
		*dst = b
	}
	return r, nil
}

// number reads an int, float or null scalar.
func number(n *yaml.Node, where string) (v float64, isNull bool, err error) {
	if n.Kind != yaml.ScalarNode {
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrConfig, where)
	}
	switch n.ShortTag() {
	case "!!null":
		return 0, true, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return 0, false, fmt.Errorf("%w: %s: %v", ErrConfig, where, err)
		}
		return f, false, nil
	}
	return 0, false, fmt.Errorf("%w: %s must be a number, got %q", ErrConfig, where, n.Value)
}

func stringKey(n *yaml.Node, where string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", fmt.Errorf("%w: %s keys must be strings (line %d)", ErrConfig, where, n.Line)
	}
	return n.Value, nil
}

func stringScalar(n *yaml.Node, where string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", fmt.Errorf("%w: %s values must be strings (line %d)", ErrConfig, where, n.Line)
	}
	return n.Value, nil
}
