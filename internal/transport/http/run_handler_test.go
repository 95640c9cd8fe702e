package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsstool/internal/dss"
	apierrors "dsstool/internal/errors"
	"dsstool/internal/operations"
	"dsstool/internal/services"
	"dsstool/internal/templates"
)

type fakeRunService struct {
	report *services.RunReport
	err    error

	gotUpload  []byte
	gotName    string
	gotOptions services.RunOptions
	calls      int
}

func (f *fakeRunService) Process(ctx context.Context, up services.Upload, opts services.RunOptions) (*services.RunReport, error) {
	f.calls++
	f.gotName = up.Filename
	f.gotOptions = opts
	if up.Reader != nil {
		f.gotUpload, _ = io.ReadAll(up.Reader)
	}
	return f.report, f.err
}

func (f *fakeRunService) Templates(ctx context.Context) ([]templates.Info, error) {
	return []templates.Info{{Name: dss.ThreeSectorTemplate, Sectors: 3, Size: 10}, {Name: dss.FourSectorTemplate, Sectors: 4, Size: 12}}, nil
}

func (f *fakeRunService) Defaults() dss.Options { return dss.DefaultOptions() }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunHandler(svc *fakeRunService, maxUpload int64) http.Handler {
	h := NewRunHandler(svc, apierrors.NewErrorHandler(discardLogger(), false), maxUpload, discardLogger())
	return h.Routes()
}

// multipartBody builds an upload. An empty filename omits the file part.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, h http.Handler, path, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func completedReport() *services.RunReport {
	return &services.RunReport{
		RunID:  "run-1",
		Source: "survey.xlsx",
		Status: operations.RunStatusCompleted,
		Groups: 1,
		Outputs: []*dss.RenderedOutput{{
			VariableName: "N066_1",
			TemplateUsed: dss.ThreeSectorTemplate,
			OutputFile:   "N066_1_output.txt",
			Replacements: 3,
			Content:      "site=WCL03194",
		}},
		Log: []string{"INFO [pipeline] run completed"},
	}
}

func TestRunHandler_CreateRun(t *testing.T) {
	svc := &fakeRunService{report: completedReport()}
	rec := post(t, newRunHandler(svc, 1<<20), "/", "survey.xlsx", []byte("PK-workbook"), map[string]string{
		"worksheet":     "Survey",
		"dss_column":    "DSS Name",
		"exclude_value": "SKIP",
		"variant":       "single",
		"template":      "custom.txt",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "survey.xlsx", svc.gotName)
	assert.Equal(t, []byte("PK-workbook"), svc.gotUpload)
	assert.Equal(t, services.RunOptions{
		Worksheet: "Survey",
		DSSColumn: "DSS Name",
		Exclude:   "SKIP",
		Variant:   "single",
		Template:  "custom.txt",
	}, svc.gotOptions)

	body := decode(t, rec)
	assert.Equal(t, "run-1", body["run_id"])
	assert.Equal(t, "completed", body["status"])
	outputs := body["outputs"].([]interface{})
	require.Len(t, outputs, 1)
	assert.Equal(t, "N066_1_output.txt", outputs[0].(map[string]interface{})["output_file"])
}

func TestRunHandler_CreateArchive(t *testing.T) {
	report := completedReport()
	report.Archive = []byte("PK\x03\x04zip")
	report.ArchiveName = "dss_output_20261014_120000.zip"
	svc := &fakeRunService{report: report}

	rec := post(t, newRunHandler(svc, 1<<20), "/archive", "survey.xlsx", []byte("x"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.gotOptions.Archive)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dss_output_20261014_120000.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "run-1", rec.Header().Get("X-Run-ID"))
	assert.Equal(t, report.Archive, rec.Body.Bytes())
}

func TestRunHandler_ArchiveField(t *testing.T) {
	svc := &fakeRunService{report: completedReport()}
	h := newRunHandler(svc, 1<<20)

	rec := post(t, h, "/", "survey.xlsx", []byte("x"), map[string]string{"archive": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.gotOptions.Archive)

	rec = post(t, h, "/", "survey.xlsx", []byte("x"), map[string]string{"archive": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
}

func TestRunHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		limit    int64
		want     int
		wantType string
	}{
		{"missing file", "", nil, 1 << 20, http.StatusBadRequest, apierrors.TypeValidation},
		{"body too large", "survey.xlsx", bytes.Repeat([]byte("x"), 2<<20), 512, http.StatusRequestEntityTooLarge, apierrors.TypePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRunService{report: completedReport()}
			rec := post(t, newRunHandler(svc, tt.limit), "/", tt.filename, tt.content, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantType, decode(t, rec)["type"])
			assert.Zero(t, svc.calls)
		})
	}
}

func TestRunHandler_RejectsNonMultipart(t *testing.T) {
	svc := &fakeRunService{}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRunHandler(svc, 1<<20).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestRunHandler_RunFailure(t *testing.T) {
	report := &services.RunReport{
		RunID:  "run-9",
		Status: operations.RunStatusFailed,
		Log:    []string{"ERROR [workbook] workbook could not be loaded"},
	}
	svc := &fakeRunService{
		report: report,
		err:    &dss.NotFoundError{Kind: "worksheet", Name: "5G Info", Available: []string{"Sheet1"}},
	}

	rec := post(t, newRunHandler(svc, 1<<20), "/", "survey.xlsx", []byte("x"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apierrors.TypeSourceNotFound, body["type"])
	assert.Equal(t, "run-9", body["run_id"])
	assert.Equal(t, "failed", body["run_status"])
	assert.Equal(t, []interface{}{"ERROR [workbook] workbook could not be loaded"}, body["log"])
}

func TestRunHandler_ServiceErrorsWithoutReport(t *testing.T) {
	svc := &fakeRunService{err: services.ErrNoFilename}
	rec := post(t, newRunHandler(svc, 1<<20), "/", "survey.xlsx", []byte("x"), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apierrors.CodeMissingParameter, body["error_code"])
	assert.NotContains(t, body, "run_id")
}

func TestRunHandler_GetDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	newRunHandler(&fakeRunService{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/defaults", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, dss.DefaultWorksheet, body["worksheet"])
	assert.Equal(t, dss.DefaultDSSColumn, body["dss_column"])
	assert.Equal(t, "dual", body["variant"])
}

func TestRunHandler_GetTemplates(t *testing.T) {
	h := NewRunHandler(&fakeRunService{}, nil, 0, nil)
	rec := httptest.NewRecorder()
	h.GetTemplates(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["count"])
}

func TestNewRunHandler_NilService(t *testing.T) {
	assert.Panics(t, func() { NewRunHandler(nil, nil, 0, nil) })
}
