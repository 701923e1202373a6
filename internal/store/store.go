// Package store persists computed observations to SQLite so a session's
// ground track survives the process and can be queried later.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signalsfoundry/sattrack/internal/track"
)

// Store is a SQLite-backed observation recorder.
type Store struct {
	db *sql.DB
}

// Open initialises the database at path (":memory:" works) and creates the
// schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open observation store: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		satellite_id TEXT NOT NULL,
		observed_at INTEGER NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		altitude_km REAL NOT NULL,
		azimuth REAL NOT NULL,
		elevation REAL NOT NULL,
		range_km REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_observations_sat_time
		ON observations(satellite_id, observed_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create observation schema: %w", err)
	}
	return nil
}

// Record inserts one observation for the satellite.
func (s *Store) Record(ctx context.Context, satelliteID string, o track.Observation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations
			(satellite_id, observed_at, latitude, longitude, altitude_km, azimuth, elevation, range_km)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		satelliteID, o.Time.UnixMilli(), o.Latitude, o.Longitude,
		o.AltitudeKm, o.Azimuth, o.Elevation, o.RangeKm,
	)
	if err != nil {
		return fmt.Errorf("record observation for %q: %w", satelliteID, err)
	}
	return nil
}

// RecentTrack returns up to limit observations for the satellite, newest
// first.
func (s *Store) RecentTrack(ctx context.Context, satelliteID string, limit int) ([]track.Observation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT observed_at, latitude, longitude, altitude_km, azimuth, elevation, range_km
		FROM observations
		WHERE satellite_id = ?
		ORDER BY observed_at DESC
		LIMIT ?`,
		satelliteID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query track for %q: %w", satelliteID, err)
	}
	defer rows.Close()

	var out []track.Observation
	for rows.Next() {
		var o track.Observation
		var ms int64
		if err := rows.Scan(&ms, &o.Latitude, &o.Longitude, &o.AltitudeKm, &o.Azimuth, &o.Elevation, &o.RangeKm); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Time = time.UnixMilli(ms).UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
