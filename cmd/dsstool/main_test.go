package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsstool/internal/config"
	"dsstool/internal/dss"
	"dsstool/internal/workbook/workbooktest"
)

type fixture struct {
	input     string
	templates string
	out       string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DSS_STORAGE_SCRATCH_DIR", filepath.Join(dir, "scratch"))

	fx := fixture{
		input:     filepath.Join(dir, "survey.xlsx"),
		templates: filepath.Join(dir, "templates"),
		out:       filepath.Join(dir, "out"),
	}
	data, err := workbooktest.SurveyBytes()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fx.input, data, 0o644))

	require.NoError(t, os.MkdirAll(fx.templates, 0o755))
	for name, body := range map[string]string{
		dss.FourSectorTemplate:  "four xxLTE_Site_IDxx",
		dss.ThreeSectorTemplate: "site=xxLTE_Site_IDxx nr=xx5G_NR_Node_Namexx_N00XA_1",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(fx.templates, name), []byte(body), 0o644))
	}
	return fx
}

func (fx fixture) args(extra ...string) []string {
	return append([]string{"run", "--input", fx.input, "--templates", fx.templates, "--out", fx.out}, extra...)
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_WritesOutputs(t *testing.T) {
	fx := newFixture(t)

	code, stdout, stderr := run(fx.args()...)
	require.Equal(t, exitOK, code, stderr)

	content, err := os.ReadFile(filepath.Join(fx.out, "N066_1_output.txt"))
	require.NoError(t, err)
	assert.Equal(t, "site=WCL03194 nr=NCGN003194_N066A_1", string(content))
	assert.FileExists(t, filepath.Join(fx.out, "manifest.csv"))

	assert.Contains(t, stdout, "1 configuration(s) written")
	assert.Contains(t, stdout, "INFO")
}

func TestRun_Archive(t *testing.T) {
	fx := newFixture(t)

	code, _, stderr := run(fx.args("--archive")...)
	require.Equal(t, exitOK, code, stderr)

	zips, err := filepath.Glob(filepath.Join(fx.out, "dss_output_*.zip"))
	require.NoError(t, err)
	assert.Len(t, zips, 1)
}

func TestRun_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(fixture) []string
		want string
	}{
		{
			name: "missing worksheet",
			args: func(fx fixture) []string { return fx.args("--worksheet", "Nope") },
			want: "Nope",
		},
		{
			name: "unknown variant",
			args: func(fx fixture) []string { return fx.args("--variant", "triple") },
			want: "variant",
		},
		{
			name: "missing input file",
			args: func(fx fixture) []string {
				return []string{"run", "--input", filepath.Join(fx.out, "absent.xlsx"), "--templates", fx.templates}
			},
			want: "failed to open input",
		},
		{
			name: "missing input flag",
			args: func(fixture) []string { return []string{"run"} },
			want: "input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			code, _, stderr := run(tt.args(fx)...)
			assert.Equal(t, exitInvalidData, code)
			assert.Contains(t, stderr, tt.want)
			assert.NoFileExists(t, filepath.Join(fx.out, "N066_1_output.txt"))
		})
	}
}

func TestRun_MissingTemplateFails(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(fx.templates, dss.ThreeSectorTemplate)))

	code, stdout, stderr := run(fx.args()...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "template set is incomplete")
	assert.Contains(t, stdout, "ERROR")
}

func TestTemplatesCommand(t *testing.T) {
	fx := newFixture(t)

	code, stdout, stderr := run("templates", "--templates", fx.templates)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, dss.FourSectorTemplate)
	assert.Contains(t, stdout, dss.ThreeSectorTemplate)
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := run("version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, config.AppName+" "+config.AppVersion+"\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run("frobnicate")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "unknown command")
}
