package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Review represents a stored parse outcome queued for human review.
type Review struct {
	ID              int64
	Timestamp       time.Time
	NotamID         string
	FIR             string
	Shape           string
	Stage           string
	RawText         string
	GeoJSON         string
	IsGolden        bool
	Annotation      string
	ExpectedGeoJSON string
}

// ReviewDB wraps a SQLite database for the local parse-review workflow.
type ReviewDB struct {
	db *sql.DB
}

// OpenReview opens or creates a review database at the given path.
func OpenReview(path string) (*ReviewDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createReviewSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ReviewDB{db: db}, nil
}

// Close closes the database connection.
func (d *ReviewDB) Close() error {
	return d.db.Close()
}

func createReviewSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		notam_id TEXT NOT NULL,
		fir TEXT,
		shape TEXT NOT NULL,
		stage TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		geojson TEXT NOT NULL,
		is_golden INTEGER DEFAULT 0,
		annotation TEXT,
		expected_geojson TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_notam_id ON reviews(notam_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_shape ON reviews(shape);
	CREATE INDEX IF NOT EXISTS idx_reviews_stage ON reviews(stage);
	CREATE INDEX IF NOT EXISTS idx_reviews_golden ON reviews(is_golden);

	-- FTS5 virtual table for full-text search on restriction text.
	CREATE VIRTUAL TABLE IF NOT EXISTS reviews_fts USING fts5(
		raw_text,
		content='reviews',
		content_rowid='id'
	);

	-- Triggers to keep FTS index in sync.
	CREATE TRIGGER IF NOT EXISTS reviews_ai AFTER INSERT ON reviews BEGIN
		INSERT INTO reviews_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS reviews_ad AFTER DELETE ON reviews BEGIN
		INSERT INTO reviews_fts(reviews_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS reviews_au AFTER UPDATE ON reviews BEGIN
		INSERT INTO reviews_fts(reviews_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
		INSERT INTO reviews_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;
	`

	_, err := db.Exec(schema)
	return err
}

// SaveReviewParams contains the parameters for saving a parse outcome.
type SaveReviewParams struct {
	Timestamp string
	NotamID   string
	FIR       string
	Shape     string
	Stage     string
	RawText   string
	Geometry  interface{} // marshalled to GeoJSON
}

// SaveReview stores a parse outcome for later review.
func (d *ReviewDB) SaveReview(p SaveReviewParams) (int64, error) {
	geojson, err := json.Marshal(p.Geometry)
	if err != nil {
		return 0, fmt.Errorf("marshal geometry: %w", err)
	}

	result, err := d.db.Exec(`
		INSERT INTO reviews (timestamp, notam_id, fir, shape, stage, raw_text, geojson)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Timestamp, p.NotamID, p.FIR, p.Shape, p.Stage, p.RawText, string(geojson))
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	return result.LastInsertId()
}

// ReviewQuery contains filtering options for listing reviews.
type ReviewQuery struct {
	NotamID    string // Exact match.
	Shape      string // Exact match.
	Stage      string // Exact match.
	GoldenOnly bool   // Only reviews marked golden.
	FullText   string // FTS5 search on raw_text.
	Limit      int    // Max results (default 100).
	Offset     int    // Pagination offset.
}

// List retrieves reviews matching the given parameters.
func (d *ReviewDB) List(p ReviewQuery) ([]Review, error) {
	var conditions []string
	var args []interface{}

	if p.NotamID != "" {
		conditions = append(conditions, "notam_id = ?")
		args = append(args, p.NotamID)
	}
	if p.Shape != "" {
		conditions = append(conditions, "shape = ?")
		args = append(args, p.Shape)
	}
	if p.Stage != "" {
		conditions = append(conditions, "stage = ?")
		args = append(args, p.Stage)
	}
	if p.GoldenOnly {
		conditions = append(conditions, "is_golden = 1")
	}

	// FTS5 search requires a JOIN with the FTS table.
	var query string
	if p.FullText != "" {
		query = `SELECT r.id, r.timestamp, r.notam_id, r.fir, r.shape, r.stage,
				r.raw_text, r.geojson, r.is_golden, r.annotation, r.expected_geojson
				FROM reviews r
				JOIN reviews_fts fts ON r.id = fts.rowid
				WHERE reviews_fts MATCH ?`
		args = append([]interface{}{p.FullText}, args...)
		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}
	} else {
		query = `SELECT id, timestamp, notam_id, fir, shape, stage,
				raw_text, geojson, is_golden, annotation, expected_geojson
				FROM reviews`
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
	}

	query += " ORDER BY id DESC"

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []Review
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}

	return reviews, rows.Err()
}

// GetByID retrieves a single review by ID, nil when absent.
func (d *ReviewDB) GetByID(id int64) (*Review, error) {
	row := d.db.QueryRow(`SELECT id, timestamp, notam_id, fir, shape, stage,
			raw_text, geojson, is_golden, annotation, expected_geojson
			FROM reviews WHERE id = ?`, id)

	r, err := scanReview(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func scanReview(scan func(...interface{}) error) (*Review, error) {
	var r Review
	var ts, fir, annotation, expected sql.NullString
	var isGolden sql.NullInt64

	err := scan(&r.ID, &ts, &r.NotamID, &fir, &r.Shape, &r.Stage,
		&r.RawText, &r.GeoJSON, &isGolden, &annotation, &expected)
	if err != nil {
		return nil, err
	}

	if ts.Valid {
		r.Timestamp, _ = time.Parse(time.RFC3339, ts.String)
	}
	if fir.Valid {
		r.FIR = fir.String
	}
	if isGolden.Valid {
		r.IsGolden = isGolden.Int64 == 1
	}
	if annotation.Valid {
		r.Annotation = annotation.String
	}
	if expected.Valid {
		r.ExpectedGeoJSON = expected.String
	}
	return &r, nil
}

// SetGolden marks or unmarks a review as golden.
func (d *ReviewDB) SetGolden(id int64, golden bool) error {
	val := 0
	if golden {
		val = 1
	}
	_, err := d.db.Exec(`UPDATE reviews SET is_golden = ? WHERE id = ?`, val, id)
	return err
}

// SetAnnotation sets the reviewer annotation for a review.
func (d *ReviewDB) SetAnnotation(id int64, annotation string) error {
	_, err := d.db.Exec(`UPDATE reviews SET annotation = ? WHERE id = ?`, annotation, id)
	return err
}

// SetExpectedGeoJSON records the geometry a reviewer expected.
func (d *ReviewDB) SetExpectedGeoJSON(id int64, geojson string) error {
	_, err := d.db.Exec(`UPDATE reviews SET expected_geojson = ? WHERE id = ?`, geojson, id)
	return err
}

// ReviewStats holds aggregate counts over stored reviews.
type ReviewStats struct {
	Total   int
	ByShape map[string]int
	ByStage map[string]int
	Golden  int
}

// GetStats returns statistics about the stored reviews.
func (d *ReviewDB) GetStats() (*ReviewStats, error) {
	stats := &ReviewStats{
		ByShape: make(map[string]int),
		ByStage: make(map[string]int),
	}

	row := d.db.QueryRow("SELECT COUNT(*) FROM reviews")
	if err := row.Scan(&stats.Total); err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT shape, COUNT(*) FROM reviews GROUP BY shape ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var shape string
		var count int
		if err := rows.Scan(&shape, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByShape[shape] = count
	}
	_ = rows.Close()

	rows, err = d.db.Query("SELECT stage, COUNT(*) FROM reviews GROUP BY stage ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByStage[stage] = count
	}
	_ = rows.Close()

	row = d.db.QueryRow("SELECT COUNT(*) FROM reviews WHERE is_golden = 1")
	if err := row.Scan(&stats.Golden); err != nil {
		return nil, err
	}

	return stats, nil
}
