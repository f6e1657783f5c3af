package runner

import "time"

// Status is the terminal state of a run.
type Status string

const (
	// StatusSuccess means the sequence finished on its own.
	StatusSuccess Status = "success"
	// StatusStopped means an operation returned a stop.
	StatusStopped Status = "stopped"
)

// Outcome is the result of one run.
type Outcome struct {
	RunID string `json:"run_id"`
	// Status is success or stopped.
	Status Status `json:"status"`
	// Data is the sequence's return value on success, or the stop reason.
	Data any `json:"data"`
	// Yields holds the payload of every success in suspension order. The
	// stopping value is never included.
	Yields   []any         `json:"yields"`
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration_ns"`
}

// Stopped reports whether the run ended on a stop.
func (o *Outcome) Stopped() bool { return o.Status == StatusStopped }
