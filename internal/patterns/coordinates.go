// Package patterns provides shared regex patterns and helper functions for
// NOTAM restriction-text parsing.
// This file contains coordinate conversion utilities.

package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ErrMalformedCoordinate is returned when a token does not fit either
// supported digit-group/hemisphere form.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// coordTokenPattern splits a bare pair into its four components. Length
// validation happens afterwards so we can reject 5-digit latitude groups
// that the broad \d{4,6} would otherwise accept.
var coordTokenPattern = regexp.MustCompile(`^\(?(\d{4,7})([NS])\s?(\d{4,7})([EW])\)?$`)

// ParseCoord parses a coordinate pair like "595835N0301229E" (DDMMSS) or
// "5535N03716E" (DDMM) into an orb.Point (lon, lat order). An optional
// single space between the groups and optional enclosing parentheses are
// accepted. S and W hemispheres produce negative values.
func ParseCoord(token string) (orb.Point, error) {
	m := coordTokenPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return orb.Point{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, token)
	}
	latDigits, latHemi, lonDigits, lonHemi := m[1], m[2], m[3], m[4]

	// Only the DDMM+DDDMM and DDMMSS+DDDMMSS pairings are valid.
	switch {
	case len(latDigits) == 4 && len(lonDigits) == 5:
	case len(latDigits) == 6 && len(lonDigits) == 7:
	default:
		return orb.Point{}, fmt.Errorf("%w: digit groups %d+%d in %q",
			ErrMalformedCoordinate, len(latDigits), len(lonDigits), token)
	}

	lat, err := dmsToDegrees(latDigits, 2, latHemi)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedCoordinate, token, err)
	}
	lon, err := dmsToDegrees(lonDigits, 3, lonHemi)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedCoordinate, token, err)
	}

	if lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("%w: latitude %.4f out of range", ErrMalformedCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return orb.Point{}, fmt.Errorf("%w: longitude %.4f out of range", ErrMalformedCoordinate, lon)
	}
	return orb.Point{lon, lat}, nil
}

// dmsToDegrees converts a DDMM[SS] / DDDMM[SS] digit group to signed
// decimal degrees. degDigits is 2 for latitude, 3 for longitude.
func dmsToDegrees(digits string, degDigits int, hemi string) (float64, error) {
	var deg, min, sec int
	var err error

	deg, err = strconv.Atoi(digits[:degDigits])
	if err != nil {
		return 0, err
	}
	min, err = strconv.Atoi(digits[degDigits : degDigits+2])
	if err != nil {
		return 0, err
	}
	if len(digits) > degDigits+2 {
		sec, err = strconv.Atoi(digits[degDigits+2:])
		if err != nil {
			return 0, err
		}
	}
	if min >= 60 || sec >= 60 {
		return 0, fmt.Errorf("minutes/seconds component out of range: %s", digits)
	}

	dec := float64(deg) + float64(min)/60.0 + float64(sec)/3600.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, nil
}

// ParseCoordChain parses a dash-joined coordinate sequence like
// "595835N0301229E-595811N0301228E-..." into an ordered point list.
// Tokens that are not valid coordinates are skipped.
func ParseCoordChain(chain string) []orb.Point {
	var pts []orb.Point
	for _, tok := range strings.Split(chain, "-") {
		tok = strings.Trim(strings.TrimSpace(tok), ".,;")
		if tok == "" {
			continue
		}
		p, err := ParseCoord(tok)
		if err != nil {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}

// ParseDDMM parses the short degrees+minutes form used by the pre-decoded
// area attribute, e.g. "5535N" or "03716E". Returns false when the token
// does not fit the DDMMH / DDDMMH pattern.
func ParseDDMM(token string) (float64, bool) {
	token = strings.TrimSpace(token)
	if len(token) < 4 {
		return 0, false
	}
	hemi := token[len(token)-1:]
	if !strings.Contains("NSEW", hemi) {
		return 0, false
	}
	digits := token[:len(token)-1]
	if len(digits) < 3 || len(digits) > 5 {
		return 0, false
	}
	deg, err := strconv.Atoi(digits[:len(digits)-2])
	if err != nil {
		return 0, false
	}
	min, err := strconv.Atoi(digits[len(digits)-2:])
	if err != nil || min >= 60 {
		return 0, false
	}
	dec := float64(deg) + float64(min)/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	if dec < -180 || dec > 180 {
		return 0, false
	}
	return dec, true
}
