// Package names derives dataset column names from a .names attribute description.
package names

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"cancerml/pkg/data"
)

const (
	// StartMarker opens the attribute section.
	StartMarker = "7. Attribute information"
	// EndMarker closes the attribute section.
	EndMarker = "8. Missing attribute values: none"
	// ExpectedColumns is the raw column count of the WDBC data file.
	ExpectedColumns = 32
)

// ErrParse reports a document without a usable attribute section.
var ErrParse = errors.New("names file parse error")

// Statistics are the per-feature summaries, in output order.
var Statistics = []string{"mean", "se", "max"}

var (
	enumerator = regexp.MustCompile(`^[0-9A-Za-z]\)\s*`)
	qualifier  = regexp.MustCompile(`\(.*?\)`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ReadLines returns the trimmed, non-blank lines of path, skipping # comments.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: the raw name file %s does not exist", data.ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// ExtractColumnNames builds the ordered column list from the attribute section
// of a .names document. The first two attributes (identifier and label) are kept
// as they are; every other attribute yields mean_, se_ and max_ columns, grouped
// by statistic. When expected > 0 the result must have exactly that many names.
func ExtractColumnNames(lines []string, expected int) ([]string, error) {
	start, end := -1, -1
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if start < 0 && l == StartMarker {
			start = i
		}
		if end < 0 && l == EndMarker {
			end = i
		}
	}
	switch {
	case start < 0:
		return nil, fmt.Errorf("%w: marker %q not found", ErrParse, StartMarker)
	case end < 0:
		return nil, fmt.Errorf("%w: marker %q not found", ErrParse, EndMarker)
	case end < start:
		return nil, fmt.Errorf("%w: %q appears before %q", ErrParse, EndMarker, StartMarker)
	}

	var base []string
	for _, l := range lines[start:end] {
		l = strings.TrimSpace(l)
		if !enumerator.MatchString(l) {
			continue
		}
		l = enumerator.ReplaceAllString(l, "")
		l = strings.TrimSpace(qualifier.ReplaceAllString(l, ""))
		base = append(base, strings.ToLower(whitespace.ReplaceAllString(l, "_")))
	}
	if len(base) < 2 {
		return nil, fmt.Errorf("%w: found %d attributes, need an identifier and a label", ErrParse, len(base))
	}

	out := make([]string, 0, 2+len(Statistics)*(len(base)-2))
	out = append(out, base[:2]...)
	for _, stat := range Statistics {
		for _, feature := range base[2:] {
			out = append(out, stat+"_"+feature)
		}
	}
	if expected > 0 && len(out) != expected {
		return nil, fmt.Errorf("%w: names file yields %d columns, expected %d", data.ErrColumnCount, len(out), expected)
	}
	return out, nil
}
