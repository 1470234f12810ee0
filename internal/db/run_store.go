package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
)

// DetectionRun is the stored summary of one pipeline run.
type DetectionRun struct {
	RunID      string         `json:"run_id"`
	Instant    time.Time      `json:"instant"`
	Params     extrema.Params `json:"params"`
	SubRegions int            `json:"sub_regions"`
	Validated  int            `json:"validated"`
	Kept       int            `json:"kept"`
	Elapsed    time.Duration  `json:"elapsed"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RunStore records detection runs and their ranked extremes. It implements
// extrema.Recorder.
type RunStore struct {
	db *DB
}

// NewRunStore returns a store backed by db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// RecordDetection implements extrema.Recorder.
func (s *RunStore) RecordDetection(d *extrema.Detection) error {
	_, err := s.Insert(d)
	return err
}

// Insert stores d and its extremes in one transaction and returns the
// generated run id.
func (s *RunStore) Insert(d *extrema.Detection) (string, error) {
	runID := uuid.New().String()
	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin run insert: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO detection_runs (
				run_id, instant_unix_nanos, range_km, low_sentinel, high_sentinel,
				sub_regions, validated, kept, elapsed_nanos, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, d.Instant.UnixNano(), d.Params.RangeKm, d.Params.Low, d.Params.High,
			d.SubRegions, d.Validated, len(d.Extremes), int64(d.Elapsed), time.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO detection_extremes (
				run_id, rank, is_minimum, value, lat, lon, grid_x, grid_y,
				area_size_avg_km, depth_avg, symmetry_index, significance, secondary
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare extreme insert: %w", err)
		}
		defer stmt.Close()

		for rank, e := range d.Extremes {
			_, err := stmt.Exec(runID, rank, e.IsMinimum, e.Value, e.LatLon.Lat, e.LatLon.Lon, e.X, e.Y,
				e.AreaSizeAvgKm, e.DepthAvg, e.SymmetryIndex, e.Significance, e.Secondary)
			if err != nil {
				return fmt.Errorf("insert extreme %d: %w", rank, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// ListRuns returns the most recently created runs, newest first. A limit
// of zero or less returns every run.
func (s *RunStore) ListRuns(limit int) ([]DetectionRun, error) {
	query := `
		SELECT run_id, instant_unix_nanos, range_km, low_sentinel, high_sentinel,
			sub_regions, validated, kept, elapsed_nanos, created_unix_nanos
		FROM detection_runs
		ORDER BY created_unix_nanos DESC, run_id`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunsForInstant returns the runs recorded for instant, oldest first.
func (s *RunStore) RunsForInstant(instant time.Time) ([]DetectionRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, instant_unix_nanos, range_km, low_sentinel, high_sentinel,
			sub_regions, validated, kept, elapsed_nanos, created_unix_nanos
		FROM detection_runs
		WHERE instant_unix_nanos = ?
		ORDER BY created_unix_nanos`, instant.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ListExtremes returns the stored extremes of runID in rank order.
func (s *RunStore) ListExtremes(runID string) ([]extrema.LocalExtreme, error) {
	rows, err := s.db.Query(`
		SELECT is_minimum, value, lat, lon, grid_x, grid_y,
			area_size_avg_km, depth_avg, symmetry_index, significance, secondary
		FROM detection_extremes
		WHERE run_id = ?
		ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query extremes: %w", err)
	}
	defer rows.Close()

	var out []extrema.LocalExtreme
	for rows.Next() {
		var e extrema.LocalExtreme
		var ll field.LatLon
		if err := rows.Scan(&e.IsMinimum, &e.Value, &ll.Lat, &ll.Lon, &e.X, &e.Y,
			&e.AreaSizeAvgKm, &e.DepthAvg, &e.SymmetryIndex, &e.Significance, &e.Secondary); err != nil {
			return nil, fmt.Errorf("scan extreme: %w", err)
		}
		e.LatLon = ll
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteRun removes a run; its extremes go with it.
func (s *RunStore) DeleteRun(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM detection_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}

func scanRuns(rows *sql.Rows) ([]DetectionRun, error) {
	var out []DetectionRun
	for rows.Next() {
		var r DetectionRun
		var instant, elapsed, created int64
		if err := rows.Scan(&r.RunID, &instant, &r.Params.RangeKm, &r.Params.Low, &r.Params.High,
			&r.SubRegions, &r.Validated, &r.Kept, &elapsed, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Instant = time.Unix(0, instant).UTC()
		r.Elapsed = time.Duration(elapsed)
		r.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
