package model

import "time"

// RunStatus represents the current state of an archived yard run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one archived pipeline execution for a site.
type Run struct {
	ID        string    `json:"id"`
	Site      string    `json:"site"`
	Status    RunStatus `json:"status"`
	Report    *Report   `json:"report,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
