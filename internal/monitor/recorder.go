package monitor

import (
	"fmt"

	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
)

// DetectionPlotter is an extrema.Recorder that plots every detection over
// the field slice it was computed from.
type DetectionPlotter struct {
	plotter *GridPlotter
	source  field.Source
}

// NewDetectionPlotter plots detections over slices read from src.
func NewDetectionPlotter(gp *GridPlotter, src field.Source) *DetectionPlotter {
	return &DetectionPlotter{plotter: gp, source: src}
}

// RecordDetection implements extrema.Recorder.
func (dp *DetectionPlotter) RecordDetection(d *extrema.Detection) error {
	if !dp.plotter.IsEnabled() {
		return nil
	}
	g, err := dp.source.Slice(d.Instant)
	if err != nil {
		return fmt.Errorf("plot detection: %w", err)
	}
	name := fmt.Sprintf("highlow_%s_r%.0fkm", FormatTimestamp(d.Instant), d.Params.RangeKm)
	_, err = dp.plotter.Plot(name, g, d.Extremes)
	return err
}
