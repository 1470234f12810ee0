package rpc

import (
	"time"

	"github.com/banshee-data/highlow/internal/extrema"
)

// EvaluateRequest asks for the stamped grid at Instant.
type EvaluateRequest struct {
	Instant time.Time          `json:"instant"`
	Args    []float64          `json:"args"` // [range_km, low, high]
	Output  extrema.OutputSpec `json:"output"`
}

// EvaluateResponse is the stamped grid in sparse form: every cell not
// listed holds Missing.
type EvaluateResponse struct {
	NX      int            `json:"nx"`
	NY      int            `json:"ny"`
	Missing float64        `json:"missing"`
	Cells   []extrema.Cell `json:"cells"`
}

// Grid expands the response back into a dense ResultGrid.
func (r *EvaluateResponse) Grid() *extrema.ResultGrid {
	rg := extrema.NewResultGrid(r.NX, r.NY, r.Missing)
	for _, c := range r.Cells {
		if c.X >= 0 && c.X < r.NX && c.Y >= 0 && c.Y < r.NY {
			rg.Values[c.Y*r.NX+c.X] = c.Value
		}
	}
	return rg
}

func newEvaluateResponse(rg *extrema.ResultGrid) *EvaluateResponse {
	return &EvaluateResponse{NX: rg.NX, NY: rg.NY, Missing: rg.Missing, Cells: rg.Cells()}
}

type VersionRequest struct{}

type VersionResponse struct {
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
}
