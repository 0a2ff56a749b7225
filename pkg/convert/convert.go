// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package convert provides quick type-conversion utilities for loosely typed
tabular data (CSV cells, spreadsheet values).

Spreadsheet exports frequently render integer codes as "1.0" or surround them
with whitespace. The helpers here accept those forms and report whether the
cell held a usable value, instead of silently returning zero.
*/
package convert

import (
	"math"
	"strconv"
	"strings"
)

// Int parses s as an integer, accepting integral floats such as "2.0".
// It reports false for empty cells and anything non-integral.
func Int(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Float parses s as a float64. It reports false for empty or malformed cells.
func Float(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Key normalises a numeric identifier cell into its canonical decimal form,
// so "100654", " 100654 " and "100654.0" all yield "100654".
// Non-numeric input is returned trimmed.
func Key(s string) string {
	if v, ok := Int(s); ok {
		return strconv.Itoa(v)
	}
	return strings.TrimSpace(s)
}
