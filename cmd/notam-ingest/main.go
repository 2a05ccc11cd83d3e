// Package main provides the notam-ingest daemon.
//
// It subscribes to a NATS subject carrying raw NOTAM text, resolves each
// message to a geometry through the three-stage fallback chain, and writes
// the results to ClickHouse (geometry analytics) and PostgreSQL (per-NOTAM
// state). Optionally every outcome is also saved to a local SQLite review
// database for parser-quality triage.
//
// Usage:
//
//	notam-ingest [options]
//
// Options:
//
//	-nats-url URL       NATS server URL (default: nats://localhost:4222, env: NATS_URL)
//	-nats-subject SUBJ  Subject to subscribe to (default: notam.raw, env: NATS_SUBJECT)
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
//	-review PATH        SQLite review database path (optional)
//	-workers N          Resolver worker count (default: 4)
//	-batch-size N       ClickHouse insert batch size (default: 100)
//	-flush-interval DUR Batch flush interval (default: 5s)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"notam_parser/internal/airports"
	_ "notam_parser/internal/matchers" // register all shape matchers via init()
	"notam_parser/internal/notam"
	"notam_parser/internal/registry"
	"notam_parser/internal/resolver"
	"notam_parser/internal/storage"
)

func main() {
	// NATS flags.
	natsURL := flag.String("nats-url", envOrDefault("NATS_URL", nats.DefaultURL), "NATS server URL")
	natsSubject := flag.String("nats-subject", envOrDefault("NATS_SUBJECT", "notam.raw"), "NATS subject to subscribe to")

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

	// Pipeline flags.
	reviewPath := flag.String("review", "", "SQLite review database path (optional)")
	workers := flag.Int("workers", 4, "Resolver worker count")
	batchSize := flag.Int("batch-size", 100, "ClickHouse insert batch size")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Batch flush interval")

	flag.Parse()

	registry.Default().Sort()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open databases.
	db, err := storage.Open(ctx, storage.Config{
		ClickHouse: storage.ClickHouseConfig{
			Host: *chHost, Port: *chPort, Database: *chDB,
			User: *chUser, Password: *chPassword,
		},
		Postgres: storage.PostgresConfig{
			Host: *pgHost, Port: *pgPort, Database: *pgDB,
			User: *pgUser, Password: *pgPassword,
		},
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer db.Close()

	if err := db.CreateSchemas(ctx); err != nil {
		log.Fatalf("create schemas: %v", err)
	}

	var review *storage.ReviewDB
	if *reviewPath != "" {
		review, err = storage.OpenReview(*reviewPath)
		if err != nil {
			log.Fatalf("review store: %v", err)
		}
		defer review.Close()
	}

	// Load the airport reference table for the final fallback stage.
	table, err := db.PG.LoadAirports(ctx)
	if err != nil {
		log.Printf("WARNING: airport table unavailable, airport fallback disabled: %v", err)
		table = make(airports.Table)
	} else {
		log.Printf("loaded %d airports", len(table))
	}

	// NATS connection.
	nc, err := nats.Connect(*natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	p := &pipeline{
		db:     db,
		review: review,
		table:  table,
		raw:    make(chan string, 256),
		rows:   make(chan storage.GeometryRow, 256),
	}

	// Resolver workers.
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runResolver(ctx)
		}()
	}

	// Batch writer.
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.runWriter(ctx, *batchSize, *flushInterval)
	}()

	sub, err := nc.Subscribe(*natsSubject, func(msg *nats.Msg) {
		select {
		case p.raw <- string(msg.Data):
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.Fatalf("subscribe %s: %v", *natsSubject, err)
	}
	defer sub.Unsubscribe()

	log.Printf("notam-ingest subscribed to %q on %s (%d workers)", *natsSubject, *natsURL, *workers)

	// Signal handling.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("received signal %v, shutting down", sig)

	cancel()
	wg.Wait()
}

type pipeline struct {
	db     *storage.DB
	review *storage.ReviewDB
	table  airports.Table
	raw    chan string
	rows   chan storage.GeometryRow
}

// runResolver consumes raw NOTAM text, resolves each block to a geometry
// and hands rows to the batch writer.
func (p *pipeline) runResolver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-p.raw:
			for _, block := range notam.SplitBlocks(raw) {
				p.handleBlock(ctx, block)
			}
		}
	}
}

func (p *pipeline) handleBlock(ctx context.Context, block string) {
	rec, ok := notam.ParseBlock(block)
	if !ok {
		log.Printf("unrecognised NOTAM block (%d bytes)", len(block))
		return
	}

	// Cancellation NOTAMs update state only.
	if rec.Type == "NOTAMC" {
		if err := p.db.PG.MarkCancelled(ctx, rec.ID); err != nil {
			log.Printf("[%s] mark cancelled: %v", rec.ID, err)
		}
		return
	}

	result, err := resolver.Resolve(rec, p.table)
	state := storage.NotamState{
		NotamID:   rec.ID,
		FIR:       rec.FIR,
		Status:    "active",
		ValidFrom: rec.ValidFrom,
		ValidTill: rec.ValidTill,
	}
	if err != nil {
		log.Printf("[%s] unresolved: %v", rec.ID, err)
		if upErr := p.db.PG.UpsertState(ctx, state); upErr != nil {
			log.Printf("[%s] upsert state: %v", rec.ID, upErr)
		}
		return
	}

	row, err := geometryRow(rec, result)
	if err != nil {
		log.Printf("[%s] encode geometry: %v", rec.ID, err)
		return
	}

	state.Stage = result.Stage
	state.Shape = row.Shape
	if err := p.db.PG.UpsertState(ctx, state); err != nil {
		log.Printf("[%s] upsert state: %v", rec.ID, err)
	}

	if p.review != nil {
		_, err := p.review.SaveReview(storage.SaveReviewParams{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			NotamID:   rec.ID,
			FIR:       rec.FIR,
			Shape:     row.Shape,
			Stage:     result.Stage,
			RawText:   rec.Raw,
			Geometry:  result.Geometry,
		})
		if err != nil {
			log.Printf("[%s] save review: %v", rec.ID, err)
		}
	}

	select {
	case p.rows <- row:
	case <-ctx.Done():
	}
}

// geometryRow flattens a resolution result into a ClickHouse row.
func geometryRow(rec *notam.Record, result *resolver.Result) (storage.GeometryRow, error) {
	geojson, err := json.Marshal(result.Geometry)
	if err != nil {
		return storage.GeometryRow{}, err
	}

	row := storage.GeometryRow{
		NotamID:   rec.ID,
		FIR:       rec.FIR,
		Stage:     result.Stage,
		GeoJSON:   string(geojson),
		RawText:   rec.Raw,
		ValidFrom: rec.ValidFrom,
		ValidTill: rec.ValidTill,
	}
	if len(rec.Locations) > 0 {
		row.Location = rec.Locations[0]
	}
	if m := result.Geometry.Meta; m != nil {
		row.Shape = string(m.Shape)
		row.RadiusNM = m.RadiusNM
		row.CorridorWidthKM = m.CorridorWidthKM
	} else {
		row.Shape = result.Geometry.Type()
	}
	return row, nil
}

// runWriter batches geometry rows into ClickHouse, flushing on size or
// interval.
func (p *pipeline) runWriter(ctx context.Context, batchSize int, flushInterval time.Duration) {
	batch := make([]storage.GeometryRow, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Use a fresh context so the final flush survives shutdown.
		flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.db.CH.InsertBatch(flushCtx, batch); err != nil {
			log.Printf("insert batch of %d: %v", len(batch), err)
		} else {
			log.Printf("flushed %d geometries", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case row := <-p.rows:
			batch = append(batch, row)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
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
