package models

import "time"

// Interaction states captured by the sequencer, in capture order.
const (
	StateInitial   = "initial"
	StateTechState = "tech-state"
	StateHover     = "hover-effect"
)

// Screenshot describes one full-page capture written to disk.
type Screenshot struct {
	State string `json:"state"`
	File  string `json:"file"`

	// Fingerprint is a structural hash of the DOM at capture time.
	// Zero when the DOM could not be read.
	Fingerprint uint64 `json:"fingerprint"`
}

// RunResult is everything one audit run produced.
type RunResult struct {
	ID          string       `json:"id"`
	Target      string       `json:"target"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Screenshots []Screenshot `json:"screenshots"`
	Hovered     bool         `json:"hovered"`
	Record      *Record      `json:"record,omitempty"`
	Verdict     *Verdict     `json:"verdict,omitempty"`
	Remediation []string     `json:"remediation,omitempty"`

	// Error is populated only when the sequence or inspection failed.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Succeeded reports whether the run completed and every check passed.
func (r *RunResult) Succeeded() bool {
	return r.Error == nil && r.Verdict != nil && r.Verdict.Overall
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Runs    int    `json:"runs"`
	Version string `json:"version"`
}

// ErrorResponse wraps an ErrorDetail for API error bodies.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
