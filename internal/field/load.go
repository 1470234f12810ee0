package field

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxSeriesFileSize caps field files read by LoadSeries.
const maxSeriesFileSize = 256 * 1024 * 1024 // 256MB

// seriesFile is the on-disk JSON layout. Every slice shares one grid layout.
type seriesFile struct {
	NX      int         `json:"nx"`
	NY      int         `json:"ny"`
	Missing float64     `json:"missing"`
	Area    Area        `json:"area"`
	Slices  []sliceFile `json:"slices"`
}

type sliceFile struct {
	Time   time.Time `json:"time"`
	Values []float64 `json:"values"`
}

// LoadSeries reads a JSON field file. The file must have a .json extension.
func LoadSeries(path string) (*Series, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("field file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat field file: %w", err)
	}
	if info.Size() > maxSeriesFileSize {
		return nil, fmt.Errorf("field file too large: %d bytes (max %d)", info.Size(), maxSeriesFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read field file: %w", err)
	}

	var f seriesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse field JSON: %w", err)
	}

	s := NewSeries()
	for i, sl := range f.Slices {
		g := &Grid{NX: f.NX, NY: f.NY, Values: sl.Values, Missing: f.Missing, Area: f.Area}
		if err := s.Add(sl.Time, g); err != nil {
			return nil, fmt.Errorf("slice %d (%s): %w", i, sl.Time.Format(time.RFC3339), err)
		}
	}
	return s, nil
}

// WriteFile stores the series as JSON in the layout LoadSeries reads.
func (s *Series) WriteFile(path string) error {
	instants := s.Instants()
	var f seriesFile
	for i, t := range instants {
		g, err := s.Slice(t)
		if err != nil {
			return err
		}
		if i == 0 {
			f.NX, f.NY, f.Missing, f.Area = g.NX, g.NY, g.Missing, g.Area
		} else if g.NX != f.NX || g.NY != f.NY || g.Missing != f.Missing || g.Area != f.Area {
			return fmt.Errorf("%w: slice %s", ErrInconsistentSeries, t.Format(time.RFC3339))
		}
		f.Slices = append(f.Slices, sliceFile{Time: t, Values: g.Values})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode field JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write field file: %w", err)
	}
	return nil
}
