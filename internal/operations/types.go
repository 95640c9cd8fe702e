package operations

import (
	"log/slog"
	"time"

	"dsstool/internal/dss"
)

// Step IDs and display names
const (
	StepIDExtract = "extract"
	StepIDGroup   = "group"
	StepIDClean   = "clean"
	StepIDEnrich  = "enrich"
	StepIDMap     = "map"
	StepIDRender  = "render"

	StepNameExtract = "Row Filtering"
	StepNameGroup   = "Pattern Grouping"
	StepNameClean   = "Field Cleaning"
	StepNameEnrich  = "Cross-Sheet Enrichment"
	StepNameMap     = "Placeholder Mapping"
	StepNameRender  = "Template Rendering"
)

// RunStatus represents the status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunRequest is everything one pipeline run consumes.
type RunRequest struct {
	// ID is generated when empty.
	ID        string
	Source    string
	Workbook  *dss.Workbook
	Templates dss.TemplateSet
	Options   dss.Options
	// Logger receives every step record. Nil means slog.Default().
	Logger *slog.Logger
}

// StepSummary is the reported outcome of one step.
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// RunResult is the outcome of a run.
type RunResult struct {
	ID        string                `json:"id"`
	Source    string                `json:"source,omitempty"`
	Status    RunStatus             `json:"status"`
	StartTime time.Time             `json:"start_time"`
	Duration  time.Duration         `json:"duration_ns"`
	Groups    int                   `json:"groups"`
	Steps     []StepSummary         `json:"steps"`
	Outputs   []*dss.RenderedOutput `json:"outputs"`
	Error     string                `json:"error,omitempty"`
}
