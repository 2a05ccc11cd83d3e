package airports

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	csv := `icao,name,lat,lon
UUEE,Sheremetyevo,55.972,37.414
ULLI,Pulkovo,59.8,30.2625
uuww,Vnukovo,55.5915,37.2615
`
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("table has %d entries, want 3", len(table))
	}

	ap, ok := table.Lookup("UUEE")
	if !ok {
		t.Fatal("expected UUEE in table")
	}
	if ap.Name != "Sheremetyevo" || ap.Lat != 55.972 || ap.Lon != 37.414 {
		t.Errorf("UUEE = %+v", ap)
	}

	// Identifiers are stored uppercase.
	if _, ok := table.Lookup("UUWW"); !ok {
		t.Error("expected lowercase source row to be stored uppercase")
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	csv := "UUEE,Sheremetyevo,55.972,37.414\n"
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if len(table) != 1 {
		t.Errorf("table has %d entries, want 1", len(table))
	}
}

func TestReadCSV_BadCoordinates(t *testing.T) {
	csv := "icao,name,lat,lon\nUUEE,Sheremetyevo,not-a-number,37.414\n"
	if _, err := ReadCSV(strings.NewReader(csv)); err == nil {
		t.Error("expected error for bad coordinates past the header")
	}
}

func TestLookup_Normalizes(t *testing.T) {
	table := Table{"UUEE": {ICAO: "UUEE", Lat: 55.972, Lon: 37.414}}
	if _, ok := table.Lookup(" uuee "); !ok {
		t.Error("Lookup should trim and uppercase the identifier")
	}
	if _, ok := table.Lookup("XXXX"); ok {
		t.Error("Lookup of unknown identifier should fail")
	}
}
