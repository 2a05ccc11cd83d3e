package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"notam_parser/internal/airports"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool holding the airport
// reference table and per-NOTAM processing state.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS airports (
			icao       TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			lat        DOUBLE PRECISION NOT NULL,
			lon        DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notam_state (
			notam_id   TEXT PRIMARY KEY,
			fir        TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'active',
			stage      TEXT NOT NULL DEFAULT '',
			shape      TEXT NOT NULL DEFAULT '',
			valid_from TEXT NOT NULL DEFAULT '',
			valid_till TEXT NOT NULL DEFAULT '',
			first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_seen  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notam_state_fir ON notam_state (fir)`,
		`CREATE INDEX IF NOT EXISTS idx_notam_state_status ON notam_state (status)`,
	}

	for _, q := range queries {
		if _, err := d.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// UpsertAirport inserts or updates one airport reference row.
func (d *PostgresDB) UpsertAirport(ctx context.Context, ap airports.Airport) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO airports (icao, name, lat, lon, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (icao) DO UPDATE
		SET name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
		    updated_at = now()
	`, ap.ICAO, ap.Name, ap.Lat, ap.Lon)
	if err != nil {
		return fmt.Errorf("upsert airport %s: %w", ap.ICAO, err)
	}
	return nil
}

// ImportAirports loads a full airport table into PostgreSQL.
func (d *PostgresDB) ImportAirports(ctx context.Context, table airports.Table) error {
	for _, ap := range table {
		if err := d.UpsertAirport(ctx, ap); err != nil {
			return err
		}
	}
	return nil
}

// LoadAirports reads the airport reference table into memory for the
// resolver's final fallback stage.
func (d *PostgresDB) LoadAirports(ctx context.Context) (airports.Table, error) {
	rows, err := d.pool.Query(ctx, `SELECT icao, name, lat, lon FROM airports`)
	if err != nil {
		return nil, fmt.Errorf("query airports: %w", err)
	}
	defer rows.Close()

	table := make(airports.Table)
	for rows.Next() {
		var ap airports.Airport
		if err := rows.Scan(&ap.ICAO, &ap.Name, &ap.Lat, &ap.Lon); err != nil {
			return nil, fmt.Errorf("scan airport row: %w", err)
		}
		table[ap.ICAO] = ap
	}
	return table, rows.Err()
}

// NotamState is one row of per-NOTAM processing state.
type NotamState struct {
	NotamID   string
	FIR       string
	Status    string // active | cancelled | replaced
	Stage     string
	Shape     string
	ValidFrom string
	ValidTill string
	FirstSeen time.Time
	LastSeen  time.Time
}

// UpsertState records that a NOTAM was seen, updating its resolution
// outcome and last-seen time on repeat sightings.
func (d *PostgresDB) UpsertState(ctx context.Context, s NotamState) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO notam_state (notam_id, fir, status, stage, shape, valid_from, valid_till)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (notam_id) DO UPDATE
		SET fir = EXCLUDED.fir, status = EXCLUDED.status,
		    stage = EXCLUDED.stage, shape = EXCLUDED.shape,
		    valid_from = EXCLUDED.valid_from, valid_till = EXCLUDED.valid_till,
		    last_seen = now()
	`, s.NotamID, s.FIR, s.Status, s.Stage, s.Shape, s.ValidFrom, s.ValidTill)
	if err != nil {
		return fmt.Errorf("upsert state %s: %w", s.NotamID, err)
	}
	return nil
}

// MarkCancelled flags a NOTAM as cancelled, as signalled by a NOTAMC.
func (d *PostgresDB) MarkCancelled(ctx context.Context, notamID string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE notam_state SET status = 'cancelled', last_seen = now() WHERE notam_id = $1`,
		notamID)
	if err != nil {
		return fmt.Errorf("mark cancelled %s: %w", notamID, err)
	}
	return nil
}

// GetState retrieves the state row for one NOTAM.
func (d *PostgresDB) GetState(ctx context.Context, notamID string) (*NotamState, error) {
	var s NotamState
	err := d.pool.QueryRow(ctx, `
		SELECT notam_id, fir, status, stage, shape, valid_from, valid_till, first_seen, last_seen
		FROM notam_state WHERE notam_id = $1
	`, notamID).Scan(&s.NotamID, &s.FIR, &s.Status, &s.Stage, &s.Shape,
		&s.ValidFrom, &s.ValidTill, &s.FirstSeen, &s.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("get state %s: %w", notamID, err)
	}
	return &s, nil
}

// ActiveByFIR lists active NOTAM state rows for one FIR.
func (d *PostgresDB) ActiveByFIR(ctx context.Context, fir string) ([]NotamState, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT notam_id, fir, status, stage, shape, valid_from, valid_till, first_seen, last_seen
		FROM notam_state WHERE fir = $1 AND status = 'active'
		ORDER BY notam_id
	`, fir)
	if err != nil {
		return nil, fmt.Errorf("query active by fir: %w", err)
	}
	defer rows.Close()

	var out []NotamState
	for rows.Next() {
		var s NotamState
		if err := rows.Scan(&s.NotamID, &s.FIR, &s.Status, &s.Stage, &s.Shape,
			&s.ValidFrom, &s.ValidTill, &s.FirstSeen, &s.LastSeen); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
