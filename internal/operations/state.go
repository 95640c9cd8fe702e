package operations

import (
	"log/slog"
	"sync"
	"time"

	"dsstool/internal/dss"
)

// RunState carries the inputs of a run and the result of every step.
// Steps read and write the typed fields directly; the manager runs them one
// at a time.
type RunState struct {
	mu        sync.RWMutex
	ID        string
	Source    string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	Workbook  *dss.Workbook
	Templates dss.TemplateSet
	Options   dss.Options
	Logger    *slog.Logger

	Filtered *dss.FilteredRows
	Groups   []dss.Group
	Cleaned  []dss.CleanedRecord
	Enriched []dss.EnrichedRecord
	Maps     []*dss.PlaceholderMap
	Outputs  []*dss.RenderedOutput

	steps map[string]*StepState
	order []string
}

// NewRunState creates the state for req. Options are completed with defaults.
func NewRunState(req RunRequest) *RunState {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RunState{
		ID:        req.ID,
		Source:    req.Source,
		Status:    RunStatusPending,
		Workbook:  req.Workbook,
		Templates: req.Templates,
		Options:   req.Options.WithDefaults(),
		Logger:    logger,
		steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Status = RunStatusCompleted
	s.EndTime = &now
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Status = RunStatusFailed
	s.EndTime = &now
	s.Error = err
}

// Cancel marks the run as cancelled
func (s *RunState) Cancel(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Status = RunStatusCancelled
	s.EndTime = &now
	s.Error = err
}

// GetStatus returns the run status
func (s *RunState) GetStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetStep registers the state of a step, keeping registration order
func (s *RunState) SetStep(st *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.steps[st.ID]; !ok {
		s.order = append(s.order, st.ID)
	}
	s.steps[st.ID] = st
}

// GetStep returns the state of a step
func (s *RunState) GetStep(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[id]
}

// Duration returns the elapsed run time
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Result builds the reportable outcome of the run.
func (s *RunState) Result() *RunResult {
	d := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := &RunResult{
		ID:        s.ID,
		Source:    s.Source,
		Status:    s.Status,
		StartTime: s.StartTime,
		Duration:  d,
		Groups:    len(s.Groups),
		Steps:     make([]StepSummary, 0, len(s.order)),
		Outputs:   s.Outputs,
	}
	for _, id := range s.order {
		res.Steps = append(res.Steps, s.steps[id].Summary())
	}
	if res.Outputs == nil {
		res.Outputs = []*dss.RenderedOutput{}
	}
	if s.Error != nil {
		res.Error = s.Error.Error()
	}
	return res
}
