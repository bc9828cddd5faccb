package navigator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPrefix matches the longest leading decimal literal of a label ("10.5", "12a", "-3", ".5", "1e3").
var decimalPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseLabel converts a chapter label into a sort key.
//
// The leading numeric part of the label is used, so "10.5" is 10.5 and "12a" is 12.
// Labels without a numeric prefix ("Extra", "") and non-finite values parse as 0.
// "Infinity" is not treated as a number, so such a label sorts with the unnumbered chapters instead of last.
// The result is lossy: distinct labels may share a key and keys say nothing about uniqueness.
func ParseLabel(label string) float64 {
	prefix := decimalPrefix.FindString(strings.TrimSpace(label))
	if prefix == "" {
		return 0
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	if v == 0 {
		return 0 // normalizes -0
	}
	return v
}
