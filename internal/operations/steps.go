package operations

import (
	"context"
	"fmt"
	"log/slog"

	"dsstool/internal/dss"
)

// DefaultSteps returns the six pipeline steps in execution order.
func DefaultSteps() []Step {
	return []Step{
		NewExtractStep(),
		NewGroupStep(),
		NewCleanStep(),
		NewEnrichStep(),
		NewMapStep(),
		NewRenderStep(),
	}
}

// ExtractStep filters the main worksheet by the DSS column.
type ExtractStep struct {
	BaseStage
}

func NewExtractStep() *ExtractStep {
	return &ExtractStep{BaseStage: NewBaseStage(StepIDExtract, StepNameExtract)}
}

func (s *ExtractStep) Execute(ctx context.Context, state *RunState) error {
	if state.Workbook == nil {
		return NewValidationError(s.ID(), "no workbook loaded")
	}
	rows, err := dss.NewExtractor(state.Options, state.Logger).Extract(state.Workbook)
	if err != nil {
		return err
	}
	state.Filtered = rows
	if len(rows.Rows) == 0 {
		return &dss.NoDataError{
			Sheet:   rows.Sheet,
			Column:  rows.Column,
			Exclude: state.Options.Exclude,
			Total:   rows.Total,
		}
	}
	return nil
}

// GroupStep splits the filtered rows by band and carrier.
type GroupStep struct {
	BaseStage
}

func NewGroupStep() *GroupStep {
	return &GroupStep{BaseStage: NewBaseStage(StepIDGroup, StepNameGroup)}
}

func (s *GroupStep) Execute(ctx context.Context, state *RunState) error {
	if state.Filtered == nil {
		return NewValidationError(s.ID(), "extract step has not run")
	}
	groups, err := dss.NewGrouper(state.Options, state.Logger).Group(state.Filtered)
	if err != nil {
		return err
	}
	state.Groups = groups
	return nil
}

// CleanStep flattens every group to a sector record.
type CleanStep struct {
	BaseStage
}

func NewCleanStep() *CleanStep {
	return &CleanStep{BaseStage: NewBaseStage(StepIDClean, StepNameClean)}
}

func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	c := dss.NewCleaner(state.Logger)
	state.Cleaned = make([]dss.CleanedRecord, 0, len(state.Groups))
	for _, g := range state.Groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		state.Cleaned = append(state.Cleaned, c.Clean(g))
	}
	return nil
}

// EnrichStep joins the records with the node and cell worksheets.
type EnrichStep struct {
	BaseStage
}

func NewEnrichStep() *EnrichStep {
	return &EnrichStep{BaseStage: NewBaseStage(StepIDEnrich, StepNameEnrich)}
}

func (s *EnrichStep) Execute(ctx context.Context, state *RunState) error {
	e := dss.NewEnricher(state.Workbook, state.Options, state.Logger)
	state.Enriched = make([]dss.EnrichedRecord, 0, len(state.Cleaned))
	for _, rec := range state.Cleaned {
		if err := ctx.Err(); err != nil {
			return err
		}
		state.Enriched = append(state.Enriched, e.Enrich(rec))
	}
	return nil
}

// MapStep derives the placeholder values of each record.
type MapStep struct {
	BaseStage
}

func NewMapStep() *MapStep {
	return &MapStep{BaseStage: NewBaseStage(StepIDMap, StepNameMap)}
}

func (s *MapStep) Execute(ctx context.Context, state *RunState) error {
	mp := dss.NewMapper(state.Logger)
	state.Maps = make([]*dss.PlaceholderMap, 0, len(state.Enriched))
	for _, rec := range state.Enriched {
		if err := ctx.Err(); err != nil {
			return err
		}
		state.Maps = append(state.Maps, mp.Map(rec))
	}
	return nil
}

// RenderStep substitutes each placeholder map into its template.
type RenderStep struct {
	BaseStage
}

func NewRenderStep() *RenderStep {
	return &RenderStep{BaseStage: NewBaseStage(StepIDRender, StepNameRender)}
}

func (s *RenderStep) Execute(ctx context.Context, state *RunState) error {
	if len(state.Templates) == 0 {
		return NewValidationError(s.ID(), "no templates loaded")
	}
	r := dss.NewRenderer(state.Templates, state.Options, state.Logger)
	state.Outputs = make([]*dss.RenderedOutput, 0, len(state.Maps))
	for _, m := range state.Maps {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := r.Render(m)
		if err != nil {
			return err
		}
		state.Outputs = append(state.Outputs, out)
	}
	state.Logger.InfoContext(ctx, "outputs rendered", slog.Int("count", len(state.Outputs)))
	return nil
}

// stepMessage is the one-line result recorded on a completed step.
func stepMessage(id string, state *RunState) string {
	switch id {
	case StepIDExtract:
		return fmt.Sprintf("%d of %d rows kept", len(state.Filtered.Rows), state.Filtered.Total)
	case StepIDGroup:
		return fmt.Sprintf("%d groups", len(state.Groups))
	case StepIDClean:
		return fmt.Sprintf("%d records cleaned", len(state.Cleaned))
	case StepIDEnrich:
		return fmt.Sprintf("%d records enriched", len(state.Enriched))
	case StepIDMap:
		return fmt.Sprintf("%d placeholder maps", len(state.Maps))
	case StepIDRender:
		return fmt.Sprintf("%d outputs", len(state.Outputs))
	}
	return ""
}
