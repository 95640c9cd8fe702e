package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"dsstool/internal/config"
	"dsstool/internal/dss"
	apierrors "dsstool/internal/errors"
	"dsstool/internal/exporter"
	"dsstool/internal/files"
	"dsstool/internal/infrastructure"
	"dsstool/internal/operations"
	"dsstool/internal/runlog"
	"dsstool/internal/templates"
	"dsstool/internal/workbook"
)

// Upload is one workbook posted by a client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// RunOptions overrides the configured pipeline defaults for one run. Empty
// fields keep the default.
type RunOptions struct {
	Worksheet  string `json:"worksheet" validate:"omitempty,sheetname"`
	DSSColumn  string `json:"dss_column" validate:"omitempty,max=255"`
	CellColumn string `json:"cell_column" validate:"omitempty,max=255"`
	Exclude    string `json:"exclude_value" validate:"omitempty,max=255"`
	Variant    string `json:"variant" validate:"omitempty,oneof=single dual"`
	Template   string `json:"template" validate:"omitempty,filename"`
	// Archive forces a zip even for a single output.
	Archive bool `json:"archive"`
}

// apply layers o over base.
func (o RunOptions) apply(base dss.Options) dss.Options {
	if o.Worksheet != "" {
		base.Worksheet = o.Worksheet
	}
	if o.DSSColumn != "" {
		base.DSSColumn = o.DSSColumn
	}
	if o.CellColumn != "" {
		base.CellColumn = o.CellColumn
	}
	if o.Exclude != "" {
		base.Exclude = o.Exclude
	}
	if o.Variant != "" {
		base.Variant = dss.Variant(o.Variant)
	}
	if o.Template != "" {
		base.SingleTemplate = o.Template
	}
	return base.WithDefaults()
}

// RunReport is what a client gets back for one run.
type RunReport struct {
	RunID    string                   `json:"run_id"`
	Source   string                   `json:"source"`
	Status   operations.RunStatus     `json:"status"`
	Duration time.Duration            `json:"duration_ns"`
	Groups   int                      `json:"groups"`
	Steps    []operations.StepSummary `json:"steps"`
	Outputs  []*dss.RenderedOutput    `json:"outputs"`
	Log      []string                 `json:"log"`
	Error    string                   `json:"error,omitempty"`

	Archive     []byte `json:"-"`
	ArchiveName string `json:"archive_name,omitempty"`
}

// RunPublisher receives run events while a run is in progress.
type RunPublisher interface {
	PublishLog(runID string, entry runlog.Entry)
	PublishStatus(runID string, status operations.RunStatus)
}

// RunService executes pipeline runs for uploaded workbooks.
type RunService struct {
	manager   *operations.Manager
	store     *templates.Store
	defaults  dss.Options
	scratch   string
	maxUpload int64
	timeout   time.Duration
	logLevel  slog.Level
	publisher RunPublisher
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunService wires a run service from cfg. publisher may be nil.
func NewRunService(cfg *config.Config, manager *operations.Manager, store *templates.Store, publisher RunPublisher, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{
		manager:   manager,
		store:     store,
		defaults:  cfg.PipelineOptions(),
		scratch:   cfg.ScratchRoot(),
		maxUpload: cfg.Server.MaxUploadBytes,
		timeout:   cfg.Server.RunTimeout,
		logLevel:  infrastructure.ParseLogLevel(cfg.Logging.Level),
		publisher: publisher,
		validate:  newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Defaults returns the options a run uses when RunOptions is empty.
func (s *RunService) Defaults() dss.Options {
	return s.defaults
}

// ValidateOptions checks opts without running anything.
func (s *RunService) ValidateOptions(opts RunOptions) error {
	return validateStruct(s.validate, opts)
}

// Templates lists the template files available to runs.
func (s *RunService) Templates(ctx context.Context) ([]templates.Info, error) {
	return s.store.List()
}

// Process runs the pipeline over one upload. A report is returned whenever
// the run got far enough to have an identifier, including on failure.
func (s *RunService) Process(ctx context.Context, up Upload, opts RunOptions) (*RunReport, error) {
	if up.Reader == nil {
		return nil, ErrNoUpload
	}
	if up.Filename == "" {
		return nil, ErrNoFilename
	}
	if err := s.ValidateOptions(opts); err != nil {
		return nil, err
	}
	source := filepath.Base(up.Filename)
	if !workbook.Supported(source) {
		return nil, fmt.Errorf("%s: %w", source, workbook.ErrUnsupportedFormat)
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	runID := uuid.NewString()
	collector := runlog.NewCollector(s.logLevel)
	if s.publisher != nil {
		collector.Subscribe(func(e runlog.Entry) { s.publisher.PublishLog(runID, e) })
	}
	runLogger := slog.New(runlog.Tee(collector, s.logger.Handler()))

	report := &RunReport{RunID: runID, Source: source, Status: operations.RunStatusFailed}
	s.publish(runID, operations.RunStatusRunning)
	defer func() {
		report.Log = collector.Lines()
		s.publish(runID, report.Status)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	wb, err := s.stage(ctx, runLogger, up.Reader, source)
	if err != nil {
		if ctx.Err() != nil {
			report.Status = operations.RunStatusCancelled
		}
		runLogger.Error("workbook could not be loaded",
			slog.String("component", "workbook"),
			slog.String("run_id", runID),
			slog.String("source", source),
			slog.String("error", err.Error()))
		report.Error = err.Error()
		return report, err
	}

	options := opts.apply(s.defaults)
	set, err := s.store.Load(options.Variant, options.SingleTemplate)
	if err != nil {
		runLogger.Error("templates unavailable",
			slog.String("component", "templates"),
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		report.Error = err.Error()
		return report, err
	}

	result, err := s.manager.Execute(ctx, operations.RunRequest{
		ID:        runID,
		Source:    source,
		Workbook:  wb,
		Templates: set,
		Options:   options,
		Logger:    runLogger,
	})
	if result != nil {
		report.Status = result.Status
		report.Duration = result.Duration
		report.Groups = result.Groups
		report.Steps = result.Steps
		report.Outputs = result.Outputs
		report.Error = result.Error
	}
	if err != nil {
		return report, err
	}

	if len(report.Outputs) > 1 || opts.Archive {
		if err := s.archive(report); err != nil {
			report.Status = operations.RunStatusFailed
			report.Error = err.Error()
			return report, err
		}
		runLogger.Info("archive created",
			slog.String("component", "exporter"),
			slog.String("archive", report.ArchiveName),
			slog.Int("bytes", len(report.Archive)))
	}
	return report, nil
}

// stage saves the upload into a run scratch directory and loads it.
func (s *RunService) stage(ctx context.Context, logger *slog.Logger, r io.Reader, source string) (*dss.Workbook, error) {
	scratch, err := files.NewScratch(s.scratch, logger)
	if err != nil {
		return nil, err
	}
	defer scratch.Remove()

	path, err := scratch.Save(source, r, s.maxUpload)
	if err != nil {
		return nil, err
	}

	wb, err := workbook.NewLoader(logger).Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return wb, nil
}

func (s *RunService) archive(report *RunReport) error {
	var buf bytes.Buffer
	if err := exporter.WriteArchive(&buf, report.Outputs); err != nil {
		return fmt.Errorf("failed to build archive: %w", err)
	}
	report.Archive = buf.Bytes()
	report.ArchiveName = exporter.ArchiveName(s.now())
	return nil
}

func (s *RunService) publish(runID string, status operations.RunStatus) {
	if s.publisher != nil {
		s.publisher.PublishStatus(runID, status)
	}
}

// IsClientError reports whether err was caused by the request rather than
// by the service.
func IsClientError(err error) bool {
	var (
		notFound *dss.NotFoundError
		noData   *dss.NoDataError
		invalid  apierrors.ValidationErrors
	)
	if errors.Is(err, templates.ErrNoTemplates) {
		return false
	}
	switch {
	case errors.Is(err, ErrNoUpload), errors.Is(err, ErrNoFilename),
		errors.Is(err, workbook.ErrUnsupportedFormat), errors.Is(err, workbook.ErrUnreadable),
		errors.Is(err, files.ErrTooLarge),
		errors.As(err, &notFound), errors.As(err, &noData), errors.As(err, &invalid):
		return true
	}
	return operations.GetErrorType(err) == operations.ErrorTypeValidation
}
