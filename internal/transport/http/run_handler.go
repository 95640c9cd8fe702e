package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"dsstool/internal/dss"
	apierrors "dsstool/internal/errors"
	"dsstool/internal/middleware"
	"dsstool/internal/services"
	"dsstool/internal/templates"
)

const (
	// formOverhead is allowed on top of the workbook for the multipart
	// envelope and option fields.
	formOverhead = 1 << 20
	// maxFormMemory is kept in memory before multipart parts spill to disk.
	maxFormMemory = 8 << 20
)

// RunServiceInterface is the part of the run service the handlers use.
type RunServiceInterface interface {
	Process(ctx context.Context, up services.Upload, opts services.RunOptions) (*services.RunReport, error)
	Templates(ctx context.Context) ([]templates.Info, error)
	Defaults() dss.Options
}

// RunHandler handles pipeline runs over uploaded workbooks.
type RunHandler struct {
	service   RunServiceInterface
	errors    *apierrors.ErrorHandler
	maxUpload int64
	logger    *slog.Logger
}

// NewRunHandler creates a new run handler. maxUpload bounds the request body.
func NewRunHandler(service RunServiceInterface, errHandler *apierrors.ErrorHandler, maxUpload int64, logger *slog.Logger) *RunHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errHandler == nil {
		errHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &RunHandler{
		service:   service,
		errors:    errHandler,
		maxUpload: maxUpload,
		logger:    logger.With(slog.String("handler", "runs")),
	}
}

// Routes sets up the run routes
func (h *RunHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/defaults", h.GetDefaults)
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errors, "multipart/form-data"))
		r.Post("/", h.CreateRun)
		r.Post("/archive", h.CreateArchive)
	})
	return r
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	report, ok := h.process(w, r, false)
	if !ok {
		return
	}
	render.JSON(w, r, report)
}

// CreateArchive handles POST /api/v1/runs/archive
func (h *RunHandler) CreateArchive(w http.ResponseWriter, r *http.Request) {
	report, ok := h.process(w, r, true)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ArchiveName))
	w.Header().Set(apierrors.RunIDHeader, report.RunID)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Archive)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Archive); err != nil {
		h.logger.WarnContext(r.Context(), "archive write failed",
			slog.String("run_id", report.RunID),
			slog.String("error", err.Error()))
	}
}

// process parses the upload, runs it and renders any failure. It reports
// whether the caller should write a success response.
func (h *RunHandler) process(w http.ResponseWriter, r *http.Request, archive bool) (*services.RunReport, bool) {
	ctx := r.Context()
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.errors.HandleError(w, r, formError(err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := parseOptions(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return nil, false
	}
	if archive {
		opts.Archive = true
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errors.HandleError(w, r, formError(err))
		return nil, false
	}
	defer file.Close()

	h.logger.InfoContext(ctx, "run requested",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Bool("archive", opts.Archive),
		slog.String("request_id", middleware.GetRequestID(ctx)))

	report, err := h.service.Process(ctx, services.Upload{Filename: header.Filename, Reader: file}, opts)
	if err != nil {
		h.fail(w, r, report, err)
		return nil, false
	}
	return report, true
}

// fail renders err, attaching the run identity and log when the run started.
func (h *RunHandler) fail(w http.ResponseWriter, r *http.Request, report *services.RunReport, err error) {
	err = serviceError(err)
	problem := h.errors.ErrorToProblem(err, r)
	if report != nil {
		problem.WithExtension("run_id", report.RunID).
			WithExtension("run_status", report.Status).
			WithExtension("log", report.Log)
		if len(report.Steps) > 0 {
			problem.WithExtension("steps", report.Steps)
		}
	}
	h.errors.Respond(w, r, err, problem)
}

// GetDefaults handles GET /api/v1/runs/defaults
func (h *RunHandler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	d := h.service.Defaults()
	render.JSON(w, r, services.RunOptions{
		Worksheet:  d.Worksheet,
		DSSColumn:  d.DSSColumn,
		CellColumn: d.CellColumn,
		Exclude:    d.Exclude,
		Variant:    string(d.Variant),
		Template:   d.SingleTemplate,
	})
}

// GetTemplates handles GET /api/v1/templates
func (h *RunHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Templates(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"templates": list,
		"count":     len(list),
	})
}

// parseOptions reads the per-run overrides from the form.
func parseOptions(r *http.Request) (services.RunOptions, error) {
	opts := services.RunOptions{
		Worksheet:  r.FormValue("worksheet"),
		DSSColumn:  r.FormValue("dss_column"),
		CellColumn: r.FormValue("cell_column"),
		Exclude:    r.FormValue("exclude_value"),
		Variant:    r.FormValue("variant"),
		Template:   r.FormValue("template"),
	}
	if raw := r.FormValue("archive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("archive", "archive must be true or false")
		}
		opts.Archive = v
	}
	return opts, nil
}

// formError maps multipart parsing failures onto API errors. Size errors are
// passed through so the error handler renders them as 413.
func formError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return err
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.ErrMissingFile
	case errors.Is(err, http.ErrNotMultipart):
		return apierrors.ErrInvalidRequest
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}

func serviceError(err error) error {
	if errors.Is(err, services.ErrNoUpload) || errors.Is(err, services.ErrNoFilename) {
		return apierrors.ErrMissingFile
	}
	return err
}
