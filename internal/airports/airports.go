// Package airports provides the read-only airport reference table used by
// the final resolution stage.
package airports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Airport is one reference-table entry.
type Airport struct {
	ICAO string  `json:"icao"`
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Table maps ICAO location identifiers to airports.
type Table map[string]Airport

// Lookup returns the airport for an ICAO identifier.
func (t Table) Lookup(icao string) (Airport, bool) {
	ap, ok := t[strings.ToUpper(strings.TrimSpace(icao))]
	return ap, ok
}

// LoadCSV reads an airport table from a CSV file with columns
// icao,name,lat,lon. A header row is skipped when the first latitude
// field does not parse.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airport table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads an airport table from CSV data.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	table := make(Table)
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airport table: %w", err)
		}
		line++
		if len(rec) < 4 {
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("airport table line %d: bad coordinates", line)
		}
		icao := strings.ToUpper(strings.TrimSpace(rec[0]))
		if icao == "" {
			continue
		}
		table[icao] = Airport{
			ICAO: icao,
			Name: strings.TrimSpace(rec[1]),
			Lat:  lat,
			Lon:  lon,
		}
	}
	return table, nil
}
