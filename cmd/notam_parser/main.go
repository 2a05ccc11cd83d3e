// Command-line entry point for the NOTAM geometry parser.
//
// Note about input formats
// ------------------------
// The resolver expects a "notam.Record" with at least the E) restriction
// text; the Q) area attribute and A) location codes improve fallback
// behaviour when no shape pattern matches.
//
// In the real world, you may have either of these inputs:
//  1. Raw NOTAM text: one or more parenthesised blocks, "(A1234/24 NOTAMN ...)"
//  2. Bare restriction text: just the E) payload, one NOTAM per blank-line gap
//
// This CLI autodetects both. Use -all to keep records even when no stage
// produced a geometry.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"notam_parser/internal/airports"
	"notam_parser/internal/geo"
	_ "notam_parser/internal/matchers" // register all shape matchers via init()
	"notam_parser/internal/notam"
	"notam_parser/internal/registry"
	"notam_parser/internal/resolver"
)

type stats struct {
	Blocks    int
	Records   int
	BareTexts int
	Resolved  int
	ByStage   map[string]int
	Failed    int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "notam_parser - commands:")
	fmt.Fprintln(w, "  extract  - resolve NOTAM text to GeoJSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  notam_parser extract -input notams.txt [-output out.geojson] [-pretty] [-all] [-stats] [-airports airports.csv]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input may be raw parenthesised NOTAM blocks or bare restriction text.")
	fmt.Fprintln(w, "  - Output is a GeoJSON FeatureCollection, one feature per NOTAM.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "extract":
		runExtract(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input NOTAM text file (default: stdin)")
	outPath := fs.String("output", "", "Output GeoJSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	includeAll := fs.Bool("all", false, "Include records even if no geometry was resolved")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	airportsPath := fs.String("airports", "", "Airport reference CSV for the final fallback stage")
	_ = fs.Parse(args)

	// Ensure matcher priority ordering is stable.
	registry.Default().Sort()

	var table airports.Table
	if *airportsPath != "" {
		var err error
		table, err = airports.LoadCSV(*airportsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load airport table: %v\n", err)
			os.Exit(1)
		}
	}

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
		os.Exit(1)
	}

	fc := geo.NewFeatureCollection(nil)
	st := &stats{ByStage: make(map[string]int)}

	blocks := notam.SplitBlocks(string(raw))
	if len(blocks) > 0 {
		st.Blocks = len(blocks)
		for _, block := range blocks {
			rec, ok := notam.ParseBlock(block)
			if !ok {
				st.Failed++
				continue
			}
			st.Records++
			appendFeature(&fc, recordFeature(rec, table), st, *includeAll)
		}
	} else {
		// No parenthesised blocks; treat blank-line separated chunks as
		// bare restriction texts.
		for _, text := range splitBareTexts(string(raw)) {
			st.BareTexts++
			appendFeature(&fc, bareTextFeature(text), st, *includeAll)
		}
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	enc, err := marshalJSON(fc, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr,
			"stats: blocks=%d records=%d bare_texts=%d resolved=%d (text=%d area=%d airport=%d) failed=%d\n",
			st.Blocks, st.Records, st.BareTexts, st.Resolved,
			st.ByStage[resolver.StageText], st.ByStage[resolver.StageArea], st.ByStage[resolver.StageAirport],
			st.Failed,
		)
	}
}

// recordFeature resolves one record into a feature. The feature geometry
// is nil when every stage declined.
func recordFeature(rec *notam.Record, table airports.Table) geo.Feature {
	props := map[string]any{
		"notam_id": rec.ID,
	}
	if rec.FIR != "" {
		props["fir"] = rec.FIR
	}
	if len(rec.Locations) > 0 {
		props["locations"] = rec.Locations
	}
	if rec.ValidFrom != "" {
		props["valid_from"] = rec.ValidFrom
	}
	if rec.ValidTill != "" {
		props["valid_till"] = rec.ValidTill
	}
	lower, upper := rec.VerticalLimits()
	props["lower"] = lower
	props["upper"] = upper

	result, err := resolver.Resolve(rec, table)
	if err != nil {
		props["error"] = err.Error()
		return geo.NewFeature(nil, props)
	}
	props["stage"] = result.Stage
	return geo.NewFeature(result.Geometry, props)
}

func bareTextFeature(text string) geo.Feature {
	props := map[string]any{}
	g := resolver.FromText(text)
	if g == nil {
		props["error"] = resolver.ErrNoPatternMatch.Error()
		return geo.NewFeature(nil, props)
	}
	props["stage"] = resolver.StageText
	return geo.NewFeature(g, props)
}

func appendFeature(fc *geo.FeatureCollection, f geo.Feature, st *stats, includeAll bool) {
	if f.Geometry == nil {
		st.Failed++
		if !includeAll {
			return
		}
	} else {
		st.Resolved++
		if stage, ok := f.Properties["stage"].(string); ok {
			st.ByStage[stage]++
		}
	}
	fc.Features = append(fc.Features, f)
}

// splitBareTexts splits input on blank lines, one restriction text per
// paragraph.
func splitBareTexts(raw string) []string {
	var out []string
	for _, chunk := range strings.Split(raw, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
