package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/schema"
)

const descriptorYAML = `
format: pdf
jasperFile: {path: /reports/invoice.jasper}
outputFile: /tmp/invoice.pdf
datasource: {kind: Database, connectionString: "jdbc:postgresql://db/sales", driver: org.postgresql.Driver}
resources:
  - {name: logo.png, path: logo.png}
`

type workspace struct {
	dir        string
	config     string
	descriptor string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:        dir,
		config:     filepath.Join(dir, "rreport.yaml"),
		descriptor: filepath.Join(dir, "invoice.yaml"),
	}
	cfg := "temp_directory: " + filepath.Join(dir, "tmp") + "\ncache_resources: true\nlog_level: error\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(ws.descriptor, []byte(descriptorYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644))
	return ws
}

func (ws *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", ws.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestXMLCommand(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "xml", ws.descriptor)
	require.NoError(t, err)
	assert.NoError(t, schema.ValidateBytes([]byte(out)))

	target := filepath.Join(ws.dir, "out.xml")
	_, err = ws.run(t, "xml", ws.descriptor, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NoError(t, schema.ValidateBytes(data))
}

func TestPayloadCommandUsesCache(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "payload", ws.descriptor)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "pdf", payload["reportType"])
	resources, ok := payload["reportResources"].([]any)
	require.True(t, ok)
	require.Len(t, resources, 1)
	assert.Equal(t, "cG5n", resources[0].(map[string]any)["resource"])

	out, err = ws.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "artifacts: 1")

	_, err = ws.run(t, "cache", "remove", filepath.Join(ws.dir, "logo.png"))
	require.NoError(t, err)
	out, err = ws.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "artifacts: 0")

	_, err = ws.run(t, "payload", ws.descriptor)
	require.NoError(t, err)
	_, err = ws.run(t, "cache", "clear")
	require.NoError(t, err)
	out, err = ws.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "artifacts: 0")
}

func TestSchemaCommand(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "schema")
	require.NoError(t, err)
	assert.Equal(t, string(schema.XSD()), out)
}

func TestExecRequiresEngineConfig(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "exec", ws.descriptor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jar path")

	_, err = ws.run(t, "exec", "--api", ws.descriptor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestProbeRejectsNonDatabase(t *testing.T) {
	ws := newWorkspace(t)
	doc := strings.Replace(descriptorYAML,
		`{kind: Database, connectionString: "jdbc:postgresql://db/sales", driver: org.postgresql.Driver}`,
		`{kind: JsonHttp, url: "http://feed/rows", requestType: GET}`, 1)
	path := filepath.Join(ws.dir, "feed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := ws.run(t, "probe", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database datasource")
}
