package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for geometry analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS geometries (
			notam_id          String,
			fir               LowCardinality(String),
			location          LowCardinality(String),
			shape             LowCardinality(String),
			stage             LowCardinality(String),
			radius_nm         Float64,
			corridor_width_km Float64,
			geojson           String,
			raw_text          String,
			valid_from        String,
			valid_till        String,
			created_at        DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (shape, stage, notam_id)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	// Full-text search over restriction text (ignore error if already exists).
	_ = d.conn.Exec(ctx, `ALTER TABLE geometries ADD INDEX IF NOT EXISTS idx_raw_text_bloom raw_text TYPE tokenbf_v1(32768, 3, 0) GRANULARITY 1`)

	return nil
}

// GeometryRow represents a resolved geometry stored in ClickHouse.
type GeometryRow struct {
	NotamID         string
	FIR             string
	Location        string
	Shape           string
	Stage           string
	RadiusNM        float64
	CorridorWidthKM float64
	GeoJSON         string
	RawText         string
	ValidFrom       string
	ValidTill       string
	CreatedAt       time.Time
}

// Insert stores a single geometry row in ClickHouse.
func (d *ClickHouseDB) Insert(ctx context.Context, row GeometryRow) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO geometries (notam_id, fir, location, shape, stage, radius_nm, corridor_width_km, geojson, raw_text, valid_from, valid_till)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.NotamID, row.FIR, row.Location, row.Shape, row.Stage, row.RadiusNM,
		row.CorridorWidthKM, row.GeoJSON, row.RawText, row.ValidFrom, row.ValidTill)
	if err != nil {
		return fmt.Errorf("insert geometry: %w", err)
	}
	return nil
}

// InsertBatch stores multiple geometry rows in ClickHouse efficiently.
func (d *ClickHouseDB) InsertBatch(ctx context.Context, rows []GeometryRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO geometries (notam_id, fir, location, shape, stage, radius_nm, corridor_width_km, geojson, raw_text, valid_from, valid_till)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range rows {
		err = batch.Append(row.NotamID, row.FIR, row.Location, row.Shape, row.Stage,
			row.RadiusNM, row.CorridorWidthKM, row.GeoJSON, row.RawText,
			row.ValidFrom, row.ValidTill)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GeometryQuery contains filtering options for querying geometries.
type GeometryQuery struct {
	NotamID  string
	FIR      string
	Location string
	Shape    string
	Stage    string
	FullText string // LIKE match on raw_text.
	Limit    int
	Offset   int
}

// Query retrieves geometry rows matching the given parameters, newest
// first.
func (d *ClickHouseDB) Query(ctx context.Context, p GeometryQuery) ([]GeometryRow, error) {
	var conditions []string
	var args []interface{}

	if p.NotamID != "" {
		conditions = append(conditions, "notam_id = ?")
		args = append(args, p.NotamID)
	}
	if p.FIR != "" {
		conditions = append(conditions, "fir = ?")
		args = append(args, p.FIR)
	}
	if p.Location != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, p.Location)
	}
	if p.Shape != "" {
		conditions = append(conditions, "shape = ?")
		args = append(args, p.Shape)
	}
	if p.Stage != "" {
		conditions = append(conditions, "stage = ?")
		args = append(args, p.Stage)
	}
	if p.FullText != "" {
		conditions = append(conditions, "raw_text LIKE ?")
		args = append(args, "%"+p.FullText+"%")
	}

	query := `SELECT notam_id, fir, location, shape, stage, radius_nm, corridor_width_km, geojson, raw_text, valid_from, valid_till, created_at FROM geometries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if p.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", p.Offset)
	}

	chRows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query geometries: %w", err)
	}
	defer chRows.Close()

	var out []GeometryRow
	for chRows.Next() {
		var row GeometryRow
		if err := chRows.Scan(&row.NotamID, &row.FIR, &row.Location, &row.Shape,
			&row.Stage, &row.RadiusNM, &row.CorridorWidthKM, &row.GeoJSON,
			&row.RawText, &row.ValidFrom, &row.ValidTill, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan geometry row: %w", err)
		}
		out = append(out, row)
	}
	return out, chRows.Err()
}

// ShapeCounts returns per-shape row counts for monitoring.
func (d *ClickHouseDB) ShapeCounts(ctx context.Context) (map[string]uint64, error) {
	rows, err := d.conn.Query(ctx, `SELECT shape, count() FROM geometries GROUP BY shape`)
	if err != nil {
		return nil, fmt.Errorf("query shape counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var shape string
		var n uint64
		if err := rows.Scan(&shape, &n); err != nil {
			return nil, fmt.Errorf("scan shape count: %w", err)
		}
		counts[shape] = n
	}
	return counts, rows.Err()
}
