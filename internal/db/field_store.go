package db

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/monitoring"
)

// FieldStore persists the slices of one named field series. It implements
// field.Source so an engine can read slices straight from the database.
type FieldStore struct {
	db   *DB
	name string
}

// NewFieldStore returns a store for the series called name.
func NewFieldStore(db *DB, name string) *FieldStore {
	return &FieldStore{db: db, name: name}
}

// Name returns the series name.
func (s *FieldStore) Name() string { return s.name }

// InsertSlice stores g as the slice for instant, replacing any slice already
// stored for that instant. Sample values are kept as a gob+gzip blob.
func (s *FieldStore) InsertSlice(instant time.Time, g *field.Grid) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("insert slice: %w", err)
	}
	blob, err := serializeValues(g.Values)
	if err != nil {
		return fmt.Errorf("serialize slice: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO field_slices (
				slice_id, name, instant_unix_nanos, nx, ny, missing,
				bl_lat, bl_lon, tr_lat, tr_lon, grid_blob, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name, instant_unix_nanos) DO UPDATE SET
				nx = excluded.nx,
				ny = excluded.ny,
				missing = excluded.missing,
				bl_lat = excluded.bl_lat,
				bl_lon = excluded.bl_lon,
				tr_lat = excluded.tr_lat,
				tr_lon = excluded.tr_lon,
				grid_blob = excluded.grid_blob,
				created_unix_nanos = excluded.created_unix_nanos`,
			uuid.New().String(), s.name, instant.UnixNano(), g.NX, g.NY, g.Missing,
			g.Area.BottomLeft.Lat, g.Area.BottomLeft.Lon, g.Area.TopRight.Lat, g.Area.TopRight.Lon,
			blob, time.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert slice: %w", err)
		}
		return nil
	})
}

// ImportSeries copies every slice of src into the store.
func (s *FieldStore) ImportSeries(src *field.Series) (int, error) {
	n := 0
	for _, instant := range src.Instants() {
		g, err := src.Slice(instant)
		if err != nil {
			return n, err
		}
		if err := s.InsertSlice(instant, g); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Get returns the slice stored for instant, or ErrNotFound.
func (s *FieldStore) Get(instant time.Time) (*field.Grid, error) {
	row := s.db.QueryRow(`
		SELECT nx, ny, missing, bl_lat, bl_lon, tr_lat, tr_lon, grid_blob
		FROM field_slices
		WHERE name = ? AND instant_unix_nanos = ?`, s.name, instant.UnixNano())

	var g field.Grid
	var blob []byte
	err := row.Scan(&g.NX, &g.NY, &g.Missing,
		&g.Area.BottomLeft.Lat, &g.Area.BottomLeft.Lon, &g.Area.TopRight.Lat, &g.Area.TopRight.Lon,
		&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("slice %s@%s: %w", s.name, instant.UTC().Format(time.RFC3339), ErrNotFound)
		}
		return nil, fmt.Errorf("scan slice: %w", err)
	}
	if g.Values, err = deserializeValues(blob); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("stored slice %s@%s: %w", s.name, instant.UTC().Format(time.RFC3339), err)
	}
	return &g, nil
}

// Slice implements field.Source. A missing row wraps field.ErrNoSlice; scan
// and decode failures are returned as they are.
func (s *FieldStore) Slice(instant time.Time) (*field.Grid, error) {
	g, err := s.Get(instant)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", field.ErrNoSlice, err)
		}
		monitoring.Diagf("field store %s: %v", s.name, err)
		return nil, err
	}
	return g, nil
}

// Instants returns the stored instants in ascending order.
func (s *FieldStore) Instants() ([]time.Time, error) {
	rows, err := s.db.Query(`
		SELECT instant_unix_nanos FROM field_slices
		WHERE name = ?
		ORDER BY instant_unix_nanos`, s.name)
	if err != nil {
		return nil, fmt.Errorf("query instants: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ns int64
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scan instant: %w", err)
		}
		out = append(out, time.Unix(0, ns).UTC())
	}
	return out, rows.Err()
}

// Delete removes the slice stored for instant.
func (s *FieldStore) Delete(instant time.Time) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM field_slices WHERE name = ? AND instant_unix_nanos = ?`,
			s.name, instant.UnixNano())
		if err != nil {
			return fmt.Errorf("delete slice: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("slice %s@%s: %w", s.name, instant.UTC().Format(time.RFC3339), ErrNotFound)
		}
		return nil
	})
}

// serializeValues encodes sample values as a gob+gzip blob.
func serializeValues(values []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(values); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeValues decompresses and decodes sample values from a gob+gzip blob.
func deserializeValues(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty grid blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var values []float64
	if err := gob.NewDecoder(gz).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode grid values: %w", err)
	}
	return values, nil
}
