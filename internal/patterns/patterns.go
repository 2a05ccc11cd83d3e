// Package patterns provides shared regex patterns and helper functions for
// NOTAM restriction-text parsing.
package patterns

import (
	"regexp"
	"strconv"
	"strings"
)

// Coord is the raw coordinate-pair form used by every shape matcher:
// DDMM/DDMMSS latitude + hemisphere, optional single space, DDDMM/DDDMMSS
// longitude + hemisphere. Other digit-group lengths are rejected by
// ParseCoord; the regex only narrows to the two supported layouts.
const Coord = `(?:\d{4}|\d{6})[NS]\s?(?:\d{5}|\d{7})[EW]`

// CoordCapture is Coord with a single capture group around the whole pair.
const CoordCapture = `(` + Coord + `)`

// Dist captures a distance value and unit, e.g. "30KM", "5 NM", "700M".
const Dist = `(\d+(?:\.\d+)?)\s*(KM|NM|M)`

// Core patterns used across multiple matchers.
var (
	// CoordPattern finds coordinate pairs anywhere in text, with or without
	// enclosing parentheses.
	CoordPattern = regexp.MustCompile(`\(?` + CoordCapture + `\)?`)

	// CoordChainPattern matches two or more coordinate pairs joined by
	// dashes (the path separator in coordinate-chain areas).
	CoordChainPattern = regexp.MustCompile(`(` + Coord + `(?:\s*-\s*` + Coord + `)+)`)

	// areaBlockPattern marks the start of a numbered sub-area block,
	// e.g. "1. AREA:" / "2. AREA:". The required space after the dot keeps
	// decimal radii like "1.5KM" from splitting the text.
	areaBlockPattern = regexp.MustCompile(`(?:^|\s)\d+\.\s+`)
)

// SplitAreas splits restriction text into numbered sub-area blocks
// ("1. AREA: ...", "2. AREA: ..."). Text without numbered blocks is returned
// as a single element.
func SplitAreas(text string) []string {
	locs := areaBlockPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	var parts []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		part := strings.TrimSpace(text[loc[1]:end])
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return parts
}

// Kilometres converts a matched distance value + unit to kilometres.
// Supported units: KM, NM (1 NM = 1.852 km) and M.
func Kilometres(value, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(unit) {
	case "KM":
		return v, true
	case "NM":
		return v * 1.852, true
	case "M":
		return v / 1000.0, true
	}
	return 0, false
}

// KilometresToNM converts kilometres to nautical miles for the radius_nm
// metadata field.
func KilometresToNM(km float64) float64 {
	return km / 1.852
}

// Normalize prepares restriction text for matching: uppercases, folds
// newlines into spaces and collapses runs of whitespace.
func Normalize(text string) string {
	t := strings.ToUpper(text)
	t = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(t)
	return strings.Join(strings.Fields(t), " ")
}
