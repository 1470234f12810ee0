package extrema

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/monitoring"
	"github.com/banshee-data/highlow/internal/timeutil"
)

// Recorder receives the summary of every pipeline run. Recording failures
// are logged and do not fail the evaluation.
type Recorder interface {
	RecordDetection(d *Detection) error
}

// Recorders fans a detection out to several recorders. Every recorder is
// called; their errors are joined.
type Recorders []Recorder

// RecordDetection implements Recorder.
func (rs Recorders) RecordDetection(d *Detection) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordDetection(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder hands every Detection to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock replaces the clock used to time pipeline runs.
func WithClock(c timeutil.Clock) Option {
	return func(e *Engine) { e.detector.clock = c }
}

// Engine caches one ResultGrid per evaluation instant and guarantees the
// pipeline runs at most once per instant. The cache is never evicted here;
// callers implementing an eviction policy use Forget.
//
// A single mutex covers lookups and the whole of a cache miss. Concurrent
// requests for the instant being computed wait for it rather than starting
// a second run. A per-instant in-flight future would let misses for
// different instants overlap; it is not needed at current request rates.
type Engine struct {
	mu       sync.Mutex
	cache    map[int64]*ResultGrid
	detector *Detector
	recorder Recorder

	computations atomic.Int64
}

// NewEngine returns an engine with an empty cache. A tuning rejected by
// Tuning.Validate fails with ErrInvalidTuning.
func NewEngine(t *Tuning, opts ...Option) (*Engine, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tuning", ErrInvalidTuning)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTuning, err)
	}
	e := &Engine{
		cache:    make(map[int64]*ResultGrid),
		detector: NewDetector(t),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate returns the stamped result grid for instant. A cached grid is
// returned as is, whatever args say. On a miss the argument vector
// [range_km, low, high] is validated, the slice for instant is fetched from
// src and the pipeline runs under the engine lock. An instant the source
// reports field.ErrNoSlice for caches an all-missing grid without running
// the pipeline. Any other error, including a source read failure, caches
// nothing, so a later call tries again.
func (e *Engine) Evaluate(instant time.Time, src field.Source, out OutputSpec, args []float64) (*ResultGrid, error) {
	key := instant.UnixNano()

	e.mu.Lock()
	defer e.mu.Unlock()

	if rg, ok := e.cache[key]; ok {
		return rg, nil
	}

	p, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNilSource
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	g, err := src.Slice(instant)
	if errors.Is(err, field.ErrNoSlice) {
		monitoring.Opsf("evaluate %s: no field slice, caching all-missing grid", instant.UTC().Format(time.RFC3339))
		rg := NewResultGrid(out.NX, out.NY, out.Missing)
		e.cache[key] = rg
		return rg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read field slice at %s: %w", instant.UTC().Format(time.RFC3339), err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("field slice at %s: %w", instant.UTC().Format(time.RFC3339), err)
	}

	e.computations.Add(1)
	det := e.detector.Detect(g, out, p)
	det.Instant = instant
	e.cache[key] = det.Result

	monitoring.Opsf("evaluate %s: %d extremes from %d sub-regions in %v",
		instant.UTC().Format(time.RFC3339), len(det.Extremes), det.SubRegions, det.Elapsed)

	if e.recorder != nil {
		if err := e.recorder.RecordDetection(det); err != nil {
			monitoring.Opsf("evaluate %s: failed to record detection: %v", instant.UTC().Format(time.RFC3339), err)
		}
	}
	return det.Result, nil
}

// Computations returns how many times the pipeline has run.
func (e *Engine) Computations() int64 {
	return e.computations.Load()
}

// Forget drops the cached grid for instant, if any.
func (e *Engine) Forget(instant time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, instant.UnixNano())
}

// Len returns the number of cached instants.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// Tuning returns the engine's thresholds.
func (e *Engine) Tuning() *Tuning {
	return e.detector.tuning
}
