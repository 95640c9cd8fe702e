package services

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dsstool/internal/config"
	"dsstool/internal/dss"
	"dsstool/internal/operations"
	"dsstool/internal/runlog"
	"dsstool/internal/templates"
	"dsstool/internal/workbook/workbooktest"
)

const threeSectorBody = "site=xxLTE_Site_IDxx enb=xxLTE_eNBIDxx A=LTE_cellidA B=LTE_cellidB nr=xx5G_NR_Node_Namexx_N00XA_1 band=N00X"

type recordingPublisher struct {
	mu       sync.Mutex
	logs     []runlog.Entry
	statuses []operations.RunStatus
	runIDs   map[string]bool
}

func (p *recordingPublisher) PublishLog(runID string, e runlog.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, e)
	p.seen(runID)
}

func (p *recordingPublisher) PublishStatus(runID string, status operations.RunStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, status)
	p.seen(runID)
}

func (p *recordingPublisher) seen(runID string) {
	if p.runIDs == nil {
		p.runIDs = map[string]bool{}
	}
	p.runIDs[runID] = true
}

type testEnv struct {
	cfg       *config.Config
	service   *RunService
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Templates.Dir = t.TempDir()
	cfg.Storage.ScratchDir = t.TempDir()
	writeTemplate(t, cfg.Templates.Dir, dss.FourSectorTemplate, "four sector xxLTE_Site_IDxx")
	writeTemplate(t, cfg.Templates.Dir, dss.ThreeSectorTemplate, threeSectorBody)
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager, err := operations.NewManager(nil, logger)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc := NewRunService(cfg, manager, templates.NewStore(cfg.Templates.Dir, logger), pub, logger)
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

	return &testEnv{cfg: cfg, service: svc, publisher: pub}
}

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func surveyUpload(t *testing.T) Upload {
	t.Helper()
	data, err := workbooktest.SurveyBytes()
	require.NoError(t, err)
	return Upload{Filename: "survey.xlsx", Reader: bytes.NewReader(data)}
}

// twoCarrierUpload adds a DSS cell on N002 carrier 2 so the run yields two
// groups.
func twoCarrierUpload(t *testing.T) Upload {
	t.Helper()
	sheets := workbooktest.Survey()
	sheets[0].Rows = append(sheets[0].Rows,
		[]any{1001, "NCGN003194", "NCGN003194_N002A_2", "WCL03194_12A_2", "SEF_NCGN003194_N002A", 14, 2, 126400})
	data, err := workbooktest.Bytes(sheets...)
	require.NoError(t, err)
	return Upload{Filename: "survey.xlsx", Reader: bytes.NewReader(data)}
}
