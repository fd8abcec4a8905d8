package catalog

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber parses a locale-formatted number such as "R$ 1.234,56". Currency
// symbols and spaces are dropped. With both separators present the rightmost
// one is the decimal separator; a lone comma is always decimal. ok is false
// for blank or unparsable input.
func ToNumber(value string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	lastComma, lastDot := strings.LastIndex(cleaned, ","), strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseID accepts a trimmed, finite, integral number.
func parseID(value string) (int64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, false
	}
	if n > math.MaxInt64 || n < math.MinInt64 {
		return 0, false
	}
	return int64(n), true
}
