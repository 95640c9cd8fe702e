package operations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Manager executes the registered steps of a run in order
type Manager struct {
	registry *Registry
	tracer   *RunTracer
	logger   *slog.Logger
}

// NewManager creates a manager. With no steps it registers DefaultSteps.
// A nil tracer records to the global OpenTelemetry providers.
func NewManager(tracer *RunTracer, logger *slog.Logger, steps ...Step) (*Manager, error) {
	if tracer == nil {
		t, err := NewRunTracer(nil)
		if err != nil {
			return nil, err
		}
		tracer = t
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(steps) == 0 {
		steps = DefaultSteps()
	}

	registry := NewRegistry()
	for _, s := range steps {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("failed to register step: %w", err)
		}
	}

	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}, nil
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every step against req. The returned result is never nil;
// on failure it is returned together with an *OperationError.
func (m *Manager) Execute(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Logger == nil {
		req.Logger = m.logger
	}

	state := NewRunState(req)
	log := state.Logger.With(slog.String("component", "operations"))
	steps := m.registry.List()
	for _, s := range steps {
		state.SetStep(NewStepState(s.ID(), s.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, state.ID, state.Source)
	defer span.End()

	state.Start()
	log.InfoContext(ctx, "run_started",
		slog.String("run_id", state.ID),
		slog.String("source", state.Source),
		slog.Int("step_count", len(steps)))

	err := m.executeSequential(ctx, log, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation || GetErrorType(err) == ErrorTypeTimeout:
		state.Cancel(err)
	default:
		state.Fail(err)
	}
	m.tracer.RecordRunCompletion(ctx, span, state)

	result := state.Result()
	if err != nil {
		log.ErrorContext(ctx, "run_failed",
			slog.String("run_id", state.ID),
			slog.String("error_type", string(GetErrorType(err))),
			slog.String("error", err.Error()))
		return result, err
	}

	log.InfoContext(ctx, "run_completed",
		slog.String("run_id", state.ID),
		slog.Int("groups", result.Groups),
		slog.Int("outputs", len(result.Outputs)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (m *Manager) executeSequential(ctx context.Context, log *slog.Logger, state *RunState, steps []Step) error {
	progress := NewProgressTracker(len(steps))

	for i, step := range steps {
		select {
		case <-ctx.Done():
			log.WarnContext(ctx, "run_cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "run cancelled")
			return NewCancellationError(step.ID(), ctx.Err())
		default:
		}

		log.InfoContext(ctx, "executing_step",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, log, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("%s failed", step.ID()))
			return err
		}

		progress.Increment()
		log.DebugContext(ctx, "run_progress",
			slog.String("run_id", state.ID),
			slog.Float64("percent", progress.Percentage()),
			slog.Duration("eta", progress.ETA()))
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, log *slog.Logger, state *RunState, step Step) error {
	st := state.GetStep(step.ID())
	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
	defer span.End()

	st.Start()
	err := step.Execute(stepCtx, state)
	if err != nil {
		opErr := WrapError(err, step.ID())
		st.Fail(opErr)
		m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), st.Duration(), opErr)
		log.ErrorContext(stepCtx, "step_failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error_type", string(opErr.Type)),
			slog.String("error", opErr.Error()))
		return opErr
	}

	st.Complete(stepMessage(step.ID(), state))
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), st.Duration(), nil)
	log.InfoContext(stepCtx, "step_completed",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", st.Duration()))
	return nil
}

func (m *Manager) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, s := range steps {
		if st := state.GetStep(s.ID()); st != nil {
			st.Skip(reason)
		}
	}
}
