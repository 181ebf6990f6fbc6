// Package store archives pipeline runs so operators can review report
// history per site.
package store

import (
	"context"

	"github.com/sells-group/yardops-cli/internal/model"
)

// RunFilter specifies criteria for listing archived runs.
type RunFilter struct {
	Site   string          `json:"site,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run archive.
type Store interface {
	CreateRun(ctx context.Context, site string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.Report) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
