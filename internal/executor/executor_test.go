package executor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/report"
	"github.com/dharsanguruparan/rreport/internal/schema"
)

func newReport(t *testing.T, output string) *report.Report {
	t.Helper()
	r := report.NewPDF()
	jf, err := report.NewJasperFile("/reports/invoice.jasper", 1)
	require.NoError(t, err)
	r.SetJasperFile(jf)
	require.NoError(t, r.SetOutputFile(output))
	db := datasource.NewDatabase()
	require.NoError(t, db.SetConnectionString("jdbc:postgresql://db/sales"))
	require.NoError(t, db.SetDriver("org.postgresql.Driver"))
	r.SetDatasource(db)
	return r
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.TempDirectory = t.TempDir()
	cfg.JarPath = "/opt/rreport/rreport.jar"
	cfg.APIEndpoint = "http://engine.invalid/report"
	return cfg
}

func TestCLIExecute(t *testing.T) {
	cfg := testConfig(t)
	cfg.Verbose = true
	output := filepath.Join(t.TempDir(), "invoice.pdf")

	var gotArgs []string
	cli, err := NewCLI(cfg, logger.Discard())
	require.NoError(t, err)
	cli.WithRunner(func(_ context.Context, name string, args ...string) ([]byte, int, error) {
		assert.Equal(t, "java", name)
		gotArgs = args
		data, err := os.ReadFile(args[3])
		require.NoError(t, err)
		require.NoError(t, schema.ValidateBytes(data))
		require.NoError(t, os.WriteFile(output, []byte("%PDF-1.4"), 0o644))
		return []byte("starting\n\nreport done\n"), 0, nil
	})

	res, err := cli.Execute(context.Background(), newReport(t, output))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"starting", "report done"}, res.Messages)
	assert.Equal(t, []byte("%PDF-1.4"), res.Report)

	require.Len(t, gotArgs, 5)
	assert.Equal(t, []string{"-jar", cfg.JarPath, "-f"}, gotArgs[:3])
	assert.Equal(t, "-v", gotArgs[4])
	_, statErr := os.Stat(gotArgs[3])
	assert.True(t, os.IsNotExist(statErr), "document file is removed")
}

func TestCLIExecuteNonZeroExit(t *testing.T) {
	cli, err := NewCLI(testConfig(t), logger.Discard())
	require.NoError(t, err)
	cli.WithRunner(func(context.Context, string, ...string) ([]byte, int, error) {
		return []byte("java.io.FileNotFoundException"), 3, nil
	})

	res, err := cli.Execute(context.Background(), newReport(t, "/tmp/x.pdf"))
	require.ErrorIs(t, err, ErrExecution)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"java.io.FileNotFoundException"}, res.Messages)
}

func TestCLIExecuteRunnerError(t *testing.T) {
	cli, err := NewCLI(testConfig(t), logger.Discard())
	require.NoError(t, err)
	boom := errors.New("java not found")
	cli.WithRunner(func(context.Context, string, ...string) ([]byte, int, error) {
		return nil, -1, boom
	})
	_, err = cli.Execute(context.Background(), newReport(t, "/tmp/x.pdf"))
	assert.ErrorIs(t, err, boom)
}

func TestCLIExecuteInvalidReport(t *testing.T) {
	cli, err := NewCLI(testConfig(t), logger.Discard())
	require.NoError(t, err)
	called := false
	cli.WithRunner(func(context.Context, string, ...string) ([]byte, int, error) {
		called = true
		return nil, 0, nil
	})
	_, err = cli.Execute(context.Background(), report.NewCSV())
	assert.Error(t, err)
	assert.False(t, called)
}

func TestNewCLIRequiresJar(t *testing.T) {
	cfg := testConfig(t)
	cfg.JarPath = ""
	_, err := NewCLI(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestAPIExecute(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_ = json.NewEncoder(w).Encode(apiResponse{
			Message: "ok",
			Report:  base64.StdEncoding.EncodeToString([]byte("%PDF")),
		})
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.APIEndpoint = srv.URL
	api, err := NewAPI(cfg, logger.Discard())
	require.NoError(t, err)

	res, err := api.Execute(context.Background(), newReport(t, "/tmp/invoice.pdf"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, []string{"ok"}, res.Messages)
	assert.Equal(t, []byte("%PDF"), res.Report)
	assert.Equal(t, "pdf", payload["reportType"])
	assert.Contains(t, payload, "datasource")
}

func TestAPIExecuteFailureIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(apiResponse{Code: 1, Message: "jasper file not found"})
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.APIEndpoint = srv.URL
	api, err := NewAPI(cfg, logger.Discard())
	require.NoError(t, err)

	res, err := api.Execute(context.Background(), newReport(t, "/tmp/invoice.pdf"))
	require.ErrorIs(t, err, ErrExecution)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Equal(t, []string{"jasper file not found"}, res.Messages)
	assert.Equal(t, 1, calls)
}

func TestAPIExecuteNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.APIEndpoint = srv.URL
	api, err := NewAPI(cfg, logger.Discard())
	require.NoError(t, err)

	res, err := api.Execute(context.Background(), newReport(t, "/tmp/invoice.pdf"))
	require.ErrorIs(t, err, ErrExecution)
	assert.Equal(t, []string{"bad gateway"}, res.Messages)
}
