package notam

import (
	"regexp"
	"strconv"
	"strings"
)

// Altitude is the decoded form of an F)/G) vertical-limit clause.
type Altitude struct {
	Type  string  `json:"type"`            // SFC | GND | UNL | ALT | UNKNOWN
	Unit  string  `json:"unit,omitempty"`  // M | FL
	Value float64 `json:"value,omitempty"`
	Ref   string  `json:"ref,omitempty"` // AMSL | AGL
	Raw   string  `json:"raw,omitempty"` // set when unparseable
}

var (
	flPattern     = regexp.MustCompile(`^FL(\d{2,3})$`)
	metresPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)M(?:\s+(AMSL|AGL))?$`)
)

// ParseAltitude decodes vertical-limit text such as "SFC", "GND", "UNL",
// "FL100", "250M AMSL" or "3000M AGL".
func ParseAltitude(text string) Altitude {
	t := strings.ToUpper(strings.TrimSpace(text))
	switch t {
	case "SFC", "GND", "UNL":
		return Altitude{Type: t}
	}
	if m := flPattern.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return Altitude{Type: "ALT", Unit: "FL", Value: v}
	}
	if m := metresPattern.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return Altitude{Type: "ALT", Unit: "M", Value: v, Ref: m[2]}
	}
	return Altitude{Type: "UNKNOWN", Raw: text}
}

// VerticalLimits decodes the record's F) and G) clauses, defaulting to
// surface and unlimited when absent.
func (r *Record) VerticalLimits() (Altitude, Altitude) {
	lower := r.LowerRaw
	if lower == "" {
		lower = "SFC"
	}
	upper := r.UpperRaw
	if upper == "" {
		upper = "UNL"
	}
	return ParseAltitude(lower), ParseAltitude(upper)
}
