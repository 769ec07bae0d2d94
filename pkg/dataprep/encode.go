package dataprep

import "sort"

// LabelEncode encodes categories as integers in sorted category order,
// so the same set of labels always gets the same codes.
func LabelEncode(data []string) ([]int, map[string]int) {
	var cats []string
	seen := map[string]bool{}
	for _, v := range data {
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}
	sort.Strings(cats)
	mapping := make(map[string]int, len(cats))
	for i, c := range cats {
		mapping[c] = i
	}
	out := make([]int, len(data))
	for i, v := range data {
		out[i] = mapping[v]
	}
	return out, mapping
}

// BinaryEncode maps the positive label to 1 and everything else to 0.
func BinaryEncode(labels []string, positive string) []float64 {
	out := make([]float64, len(labels))
	for i, v := range labels {
		if v == positive {
			out[i] = 1
		}
	}
	return out
}

// BinaryDecode inverts BinaryEncode for predictions.
func BinaryDecode(codes []float64, positive, negative string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c >= 0.5 {
			out[i] = positive
		} else {
			out[i] = negative
		}
	}
	return out
}
