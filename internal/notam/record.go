// Package notam provides NOTAM record types and decoding of the bracketed
// ICAO message format into its lettered clauses.
package notam

import (
	"regexp"
	"strconv"
	"strings"
)

// AreaAttr is the pre-decoded area attribute from the Q) clause tail:
// a DDMM/DDDMM centre plus an optional radius in nautical miles. It feeds
// the second resolution stage when the body text yields no geometry.
type AreaAttr struct {
	Lat      string  `json:"lat"`              // e.g. "5535N"
	Lon      string  `json:"long"`             // e.g. "03716E"
	RadiusNM float64 `json:"radius,omitempty"` // 0 = absent
}

// Record represents one decoded NOTAM.
type Record struct {
	ID        string    `json:"id"`   // e.g. "Q2500/25"
	Type      string    `json:"type"` // NOTAMN / NOTAMR / NOTAMC
	FIR       string    `json:"fir,omitempty"`
	Code      string    `json:"code,omitempty"` // Q code, e.g. "QRTCA"
	Area      *AreaAttr `json:"area,omitempty"`
	Locations []string  `json:"locations,omitempty"` // A) ICAO identifiers
	ValidFrom string    `json:"valid_from,omitempty"`
	ValidTill string    `json:"valid_till,omitempty"`
	Schedule  string    `json:"schedule,omitempty"`
	Body      string    `json:"body,omitempty"` // E) restriction text
	LowerRaw  string    `json:"limit_lower,omitempty"`
	UpperRaw  string    `json:"limit_upper,omitempty"`
	Raw       string    `json:"-"`
}

var (
	headerPattern = regexp.MustCompile(`\(([A-Z]\d{4}/\d{2})\s+NOTAM([NRC])`)

	qClausePattern = regexp.MustCompile(
		`Q\)\s*([A-Z]{4})/(Q[A-Z]{4})/[IVK]*/[NBOMK]*/[AEWK]+/\d{3}/[0-9 ]{3}` +
			`(?:/(\d{4}[NS])(\d{5}[EW])(\d{0,3}))?`)

	// clauseMarker finds the start of a lettered clause, e.g. " A)" or a
	// line beginning "E)". Q) is handled separately above.
	clauseMarker = regexp.MustCompile(`(?:^|[\s(])([A-G])\)`)
)

// SplitBlocks splits raw multi-NOTAM text into individual bracketed
// blocks, each starting at a "(<id> NOTAMx" header line.
func SplitBlocks(raw string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "(") && headerPattern.MatchString(trimmed) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// ParseBlock decodes one bracketed NOTAM block into a Record. Returns
// false when the block has no recognizable header; individual missing
// clauses leave their fields empty rather than failing the whole record.
func ParseBlock(block string) (*Record, bool) {
	h := headerPattern.FindStringSubmatch(block)
	if h == nil {
		return nil, false
	}
	rec := &Record{
		ID:   h[1],
		Type: "NOTAM" + h[2],
		Raw:  block,
	}

	if q := qClausePattern.FindStringSubmatch(block); q != nil {
		rec.FIR = q[1]
		rec.Code = q[2]
		if q[3] != "" && q[4] != "" {
			area := &AreaAttr{Lat: q[3], Lon: q[4]}
			if q[5] != "" {
				if r, err := strconv.Atoi(q[5]); err == nil {
					area.RadiusNM = float64(r)
				}
			}
			rec.Area = area
		}
	}

	if a := ExtractClause(block, "A"); a != "" {
		for _, tok := range strings.FieldsFunc(a, func(r rune) bool {
			return r == ' ' || r == '/' || r == '\n'
		}) {
			if len(tok) == 4 {
				rec.Locations = append(rec.Locations, tok)
			}
		}
	}
	rec.ValidFrom = ExtractClause(block, "B")
	rec.ValidTill = ExtractClause(block, "C")
	rec.Schedule = ExtractClause(block, "D")
	rec.Body = ExtractClause(block, "E")
	rec.LowerRaw = ExtractClause(block, "F")
	rec.UpperRaw = ExtractClause(block, "G")
	return rec, true
}

// ExtractClause extracts the text of a lettered clause ("A".."G"),
// joining wrapped lines until the next clause marker or the closing
// parenthesis of the block.
func ExtractClause(block, code string) string {
	marker := code + ")"
	idx := -1
	for _, loc := range clauseMarker.FindAllStringSubmatchIndex(block, -1) {
		if block[loc[2]:loc[3]] == code {
			idx = loc[3] + 1 // past the ")"
			break
		}
	}
	if idx < 0 {
		i := strings.Index(block, marker)
		if i < 0 {
			return ""
		}
		idx = i + len(marker)
	}

	rest := block[idx:]
	end := len(rest)
	if m := clauseMarker.FindStringIndex(rest); m != nil {
		end = m[0]
	}
	clause := strings.TrimSpace(rest[:end])
	clause = strings.TrimSuffix(clause, ")")
	return strings.TrimSpace(clause)
}
