package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/queue"
	"github.com/dharsanguruparan/rreport/internal/repository"
	"github.com/dharsanguruparan/rreport/internal/schema"
)

const pdfDescriptor = `
format: pdf
jasperFile: {path: /reports/invoice.jasper}
outputFile: /tmp/invoice.pdf
datasource: {kind: Database, connectionString: "jdbc:postgresql://db/sales", driver: org.postgresql.Driver}
parameters:
  - {type: string, name: customer, value: ACME}
`

type memJobs struct {
	jobs map[string]*repository.ReportJob
	err  error
}

func (m *memJobs) Create(_ context.Context, job *repository.ReportJob) error {
	if m.err != nil {
		return m.err
	}
	job.Status = repository.StatusQueued
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobs) Get(_ context.Context, id string) (*repository.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

type stubSigner struct{ ttl time.Duration }

func (s *stubSigner) PresignReportURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.ttl = ttl
	return "https://minio.local/" + key + "?sig=1", nil
}

type stubQueue struct{ tasks []*asynq.Task }

func (q *stubQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fixture struct {
	handler http.Handler
	jobs    *memJobs
	signer  *stubSigner
	queue   *stubQueue
}

func newFixture() *fixture {
	return newFixtureIn("")
}

// newFixtureIn builds a server that embeds resources only from root.
func newFixtureIn(root string) *fixture {
	cfg := config.Default()
	f := &fixture{
		jobs:   &memJobs{jobs: map[string]*repository.ReportJob{}},
		signer: &stubSigner{},
		queue:  &stubQueue{},
	}
	srv := New(cfg, f.jobs, f.signer, f.queue, descriptor.NewConfinedLoader(nil, root), logger.Discard())
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSchema(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/schema", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.XSD(), rec.Body.Bytes())
}

func TestRenderReturnsValidatedXML(t *testing.T) {
	rec := newFixture().do(http.MethodPost, "/render", pdfDescriptor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.NoError(t, schema.ValidateBytes(rec.Body.Bytes()))
}

func TestRenderErrors(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/render", "format: svg")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/render", "format: pdf\noutputFile: /o.pdf")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodGet, "/render", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = f.do(http.MethodPost, "/render", "  ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayload(t *testing.T) {
	rec := newFixture().do(http.MethodPost, "/payload", pdfDescriptor)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "pdf", payload["reportType"])
	assert.Contains(t, payload, "datasource")
}

func withResource(path string) string {
	return pdfDescriptor + "resources:\n  - {name: x, path: \"" + path + "\"}\n"
}

func TestPayloadRefusesFilesOutsideResourceDirectory(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("db_password=hunter2"), 0o600))
	root := filepath.Join(outside, "resources")
	require.NoError(t, os.Mkdir(root, 0o755))

	for _, f := range []*fixture{newFixture(), newFixtureIn(root)} {
		for _, path := range []string{"/etc/passwd", filepath.ToSlash(secret), "../secret.txt", "/dev/zero"} {
			rec := f.do(http.MethodPost, "/payload", withResource(path))
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
			assert.NotContains(t, rec.Body.String(), base64.StdEncoding.EncodeToString([]byte("db_password=hunter2")))
		}
		rec := f.do(http.MethodPost, "/reports", withResource("/etc/passwd"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.queue.tasks)
	}
}

func TestPayloadEmbedsResourceFromResourceDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), []byte("png"), 0o644))

	rec := newFixtureIn(root).do(http.MethodPost, "/payload", withResource("logo.png"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []any{map[string]any{"name": "x", "resource": "cG5n"}}, payload["reportResources"])
}

func TestSubmitAndTrackJob(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/reports", pdfDescriptor)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	id := accepted["id"]
	require.NotEmpty(t, id)
	assert.Equal(t, "queued", accepted["status"])

	require.Len(t, f.queue.tasks, 1)
	payload, err := queue.DecodeRender(f.queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, queue.RenderPayload{JobID: id, Format: "pdf"}, payload)
	assert.Equal(t, pdfDescriptor, f.jobs.jobs[id].Descriptor)

	rec = f.do(http.MethodGet, "/reports/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"queued"`)
	assert.NotContains(t, rec.Body.String(), "jdbc:postgresql")

	rec = f.do(http.MethodGet, "/reports/"+id+"/url", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	key := "reports/" + id + "/report.pdf"
	f.jobs.jobs[id].Status = repository.StatusCompleted
	f.jobs.jobs[id].OutputKey = &key
	rec = f.do(http.MethodGet, "/reports/"+id+"/url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), key)
	assert.Equal(t, config.Default().PresignTTL, f.signer.ttl)
}

func TestReportRouteErrors(t *testing.T) {
	f := newFixture()
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/reports/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/reports/", "").Code)

	f.jobs.jobs["a"] = &repository.ReportJob{ID: "a"}
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/reports/a/text", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodDelete, "/reports/a", "").Code)
}

func TestSubmitStoreFailure(t *testing.T) {
	f := newFixture()
	f.jobs.err = errors.New("db down")
	rec := f.do(http.MethodPost, "/reports", pdfDescriptor)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, f.queue.tasks)
}

func TestCORSPreflight(t *testing.T) {
	rec := newFixture().do(http.MethodOptions, "/reports", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
