package field

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Source resolves the field slice valid at an instant. A source holding no
// samples for the instant returns an error wrapping ErrNoSlice; any other
// error is a read failure.
type Source interface {
	Slice(instant time.Time) (*Grid, error)
}

// Series is an in-memory Source keyed by exact instant.
type Series struct {
	mu     sync.RWMutex
	slices map[int64]*Grid
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{slices: make(map[int64]*Grid)}
}

// Add stores g as the slice for instant, replacing any previous slice.
func (s *Series) Add(instant time.Time, g *Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slices[instant.UnixNano()] = g
	return nil
}

// Slice implements Source.
func (s *Series) Slice(instant time.Time) (*Grid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.slices[instant.UnixNano()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSlice, instant.UTC().Format(time.RFC3339))
	}
	return g, nil
}

// Instants returns the stored instants in ascending order.
func (s *Series) Instants() []time.Time {
	s.mu.RLock()
	keys := make([]int64, 0, len(s.slices))
	for k := range s.slices {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]time.Time, len(keys))
	for i, k := range keys {
		out[i] = time.Unix(0, k).UTC()
	}
	return out
}

// Len returns the number of stored slices.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slices)
}
