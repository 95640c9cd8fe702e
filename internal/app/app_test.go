package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsstool/internal/config"
	"dsstool/internal/dss"
	"dsstool/internal/workbook/workbooktest"
)

const threeSectorBody = "site=xxLTE_Site_IDxx nr=xx5G_NR_Node_Namexx_N00XA_1 band=N00X"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Templates.Dir = t.TempDir()
	cfg.Storage.ScratchDir = t.TempDir()
	for name, body := range map[string]string{
		dss.FourSectorTemplate:  "four xxLTE_Site_IDxx",
		dss.ThreeSectorTemplate: threeSectorBody,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Templates.Dir, name), []byte(body), 0o644))
	}
	return cfg
}

func startApp(t *testing.T, mutate func(*config.Config)) (*Application, string) {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	a, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	a.Server.Addr = "127.0.0.1:0"
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop(context.Background()) })
	return a, "http://" + a.Addr()
}

func uploadSurvey(t *testing.T, url string) *http.Response {
	t.Helper()
	data, err := workbooktest.SurveyBytes()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "survey.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	_, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestApplication_Probes(t *testing.T) {
	_, base := startApp(t, nil)

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready", "/livez": "alive"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, body["status"], path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
	}
}

func TestApplication_RunEndToEnd(t *testing.T) {
	_, base := startApp(t, nil)

	resp := uploadSurvey(t, base+"/api/v1/runs")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		RunID   string `json:"run_id"`
		Status  string `json:"status"`
		Outputs []struct {
			VariableName string `json:"variable_name"`
			Content      string `json:"content"`
		} `json:"outputs"`
		Log []string `json:"log"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "completed", report.Status)
	require.Len(t, report.Outputs, 1)
	assert.Equal(t, "N066_1", report.Outputs[0].VariableName)
	assert.Equal(t, "site=WCL03194 nr=NCGN003194_N066A_1 band=N066", report.Outputs[0].Content)
	assert.NotEmpty(t, report.Log)
}

func TestApplication_Metrics(t *testing.T) {
	_, base := startApp(t, nil)

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "dss_http_requests_total")
	assert.Contains(t, string(raw), "go_goroutines")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	_, base := startApp(t, func(c *config.Config) { c.Metrics.Enabled = false })

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplication_NotFoundIsProblem(t *testing.T) {
	_, base := startApp(t, nil)

	resp, err := http.Get(base + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/problem+json"))
}

func TestApplication_RateLimited(t *testing.T) {
	_, base := startApp(t, func(c *config.Config) {
		c.RateLimit.RPS = 0.001
		c.RateLimit.Burst = 1
	})

	resp, err := http.Get(base + "/api/v1/templates")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/v1/templates")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// probes are outside the limited group
	resp, err = http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplication_StreamsRunLog(t *testing.T) {
	a, base := startApp(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var greeting map[string]interface{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, "connection", greeting["type"])
	require.Eventually(t, func() bool { return a.WebSocketHub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := uploadSurvey(t, base+"/api/v1/runs")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	seen := map[string]bool{}
	for !seen["run:status:completed"] {
		var msg struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg.Type] = true
		if msg.Type == "run:status" {
			seen["run:status:"+msg.Data["status"].(string)] = true
		}
	}
	assert.True(t, seen["run:log"])
	assert.True(t, seen["run:status:running"])
}

func TestApplication_StopIsIdempotent(t *testing.T) {
	a, _ := startApp(t, nil)
	require.NoError(t, a.Stop(context.Background()))
	require.NoError(t, a.Stop(context.Background()))
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.AfterFunc(100*time.Millisecond, cancel)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCreateServer_WriteTimeoutCoversRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.WriteTimeout = time.Second
	cfg.Server.RunTimeout = time.Minute
	a, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, time.Minute+10*time.Second, a.Server.WriteTimeout)
}
