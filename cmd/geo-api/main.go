// Package main provides the geo-api server for NOTAM geometry data.
//
// This is a standalone REST API server exposing resolved NOTAM geometries
// stored in ClickHouse, plus stateless parse endpoints that run the
// resolver directly on submitted text. It's designed to be queried by
// mapping frontends that render airspace restrictions as GeoJSON.
//
// Usage:
//
//	geo-api [options]
//
// Options:
//
//	-ch-host HOST       ClickHouse host (default: localhost, env: CLICKHOUSE_HOST)
//	-ch-port PORT       ClickHouse port (default: 9000, env: CLICKHOUSE_PORT)
//	-ch-database DB     ClickHouse database (default: notam, env: CLICKHOUSE_DATABASE)
//	-ch-user USER       ClickHouse user (default: default, env: CLICKHOUSE_USER)
//	-ch-password PASS   ClickHouse password (env: CLICKHOUSE_PASSWORD)
//	-pg-host HOST       PostgreSQL host (default: localhost, env: POSTGRES_HOST)
//	-pg-port PORT       PostgreSQL port (default: 5432, env: POSTGRES_PORT)
//	-pg-database DB     PostgreSQL database (default: notam_state, env: POSTGRES_DATABASE)
//	-pg-user USER       PostgreSQL user (default: notam, env: POSTGRES_USER)
//	-pg-password PASS   PostgreSQL password (default: notam, env: POSTGRES_PASSWORD)
//	-no-db              Run without databases (parse endpoints only)
//	-airports PATH      Airport reference CSV for the final fallback stage
//	-port N             HTTP port (default: 8082)
//	-auth               Enable API key authentication
//	-api-keys KEYS      Comma-separated list of valid API keys
//
// API Endpoints:
//
//	GET /api/v1/health
//	    Health check endpoint.
//
//	POST /api/v1/parse
//	    Resolve one NOTAM. Body: {"raw": "(A1234/24 NOTAMN ...)"} or {"text": "..."}
//
//	POST /api/v1/parse/batch
//	    Resolve up to 100 NOTAMs. Body: {"items": [{"raw": "..."}]}
//
//	GET /api/v1/geometries?fir=&shape=&stage=&q=&limit=&offset=
//	    Query stored geometries as a GeoJSON FeatureCollection.
//
//	GET /api/v1/geometries/{notam_id}
//	    Get the stored geometry for one NOTAM as a GeoJSON Feature.
//
//	GET /api/v1/stats/shapes
//	    Per-shape geometry counts.
//
//	GET /api/v1/airports/{icao}
//	    Airport reference lookup.
//
// Authentication:
//
//	When -auth is enabled, requests must include an API key via:
//	  - X-API-Key header
//	  - Authorization: Bearer <key> header
//	  - ?api_key=<key> query parameter
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"notam_parser/internal/airports"
	"notam_parser/internal/api"
	_ "notam_parser/internal/matchers" // register all shape matchers via init()
	"notam_parser/internal/registry"
	"notam_parser/internal/storage"
)

func main() {
	// ClickHouse connection flags.
	chHost := flag.String("ch-host", envOrDefault("CLICKHOUSE_HOST", "localhost"), "ClickHouse host")
	chPort := flag.Int("ch-port", envOrDefaultInt("CLICKHOUSE_PORT", 9000), "ClickHouse port")
	chUser := flag.String("ch-user", envOrDefault("CLICKHOUSE_USER", "default"), "ClickHouse user")
	chPassword := flag.String("ch-password", envOrDefault("CLICKHOUSE_PASSWORD", ""), "ClickHouse password")
	chDB := flag.String("ch-database", envOrDefault("CLICKHOUSE_DATABASE", "notam"), "ClickHouse database")

	// PostgreSQL connection flags.
	pgHost := flag.String("pg-host", envOrDefault("POSTGRES_HOST", "localhost"), "PostgreSQL host")
	pgPort := flag.Int("pg-port", envOrDefaultInt("POSTGRES_PORT", 5432), "PostgreSQL port")
	pgUser := flag.String("pg-user", envOrDefault("POSTGRES_USER", "notam"), "PostgreSQL user")
	pgPassword := flag.String("pg-password", envOrDefault("POSTGRES_PASSWORD", "notam"), "PostgreSQL password")
	pgDB := flag.String("pg-database", envOrDefault("POSTGRES_DATABASE", "notam_state"), "PostgreSQL database")

	// API server flags.
	noDB := flag.Bool("no-db", false, "Run without databases (parse endpoints only)")
	airportsPath := flag.String("airports", "", "Airport reference CSV for the final fallback stage")
	port := flag.Int("port", 8082, "HTTP port for API server")
	authEnabled := flag.Bool("auth", false, "Enable API key authentication")
	apiKeys := flag.String("api-keys", "", "Comma-separated list of valid API keys (when auth enabled)")

	flag.Parse()

	registry.Default().Sort()

	ctx := context.Background()

	var ch *storage.ClickHouseDB
	var pg *storage.PostgresDB
	if !*noDB {
		var err error
		ch, err = storage.OpenClickHouse(ctx, storage.ClickHouseConfig{
			Host: *chHost, Port: *chPort, Database: *chDB,
			User: *chUser, Password: *chPassword,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening ClickHouse: %v\n", err)
			os.Exit(1)
		}
		defer ch.Close()

		pg, err = storage.OpenPostgres(ctx, storage.PostgresConfig{
			Host: *pgHost, Port: *pgPort, Database: *pgDB,
			User: *pgUser, Password: *pgPassword,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()
	}

	// Build the airport table: CSV takes precedence, then PostgreSQL.
	table := make(airports.Table)
	if *airportsPath != "" {
		t, err := airports.LoadCSV(*airportsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading airport table: %v\n", err)
			os.Exit(1)
		}
		table = t
	} else if pg != nil {
		if t, err := pg.LoadAirports(ctx); err == nil {
			table = t
		}
	}

	// Parse API keys.
	var keys []string
	if *apiKeys != "" {
		keys = strings.Split(*apiKeys, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
	}

	// Create and run server.
	server := api.NewServer(ch, pg, table, api.Config{
		Port:        *port,
		AuthEnabled: *authEnabled,
		APIKeys:     keys,
	})

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
