package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.CacheResources)
	assert.Empty(t, cfg.ResourceDirectory)
	assert.Equal(t, os.TempDir(), cfg.TempDirectory)
	assert.Equal(t, filepath.Join(os.TempDir(), "rreport-cache"), cfg.CacheDirectory())
	assert.Equal(t, "java", cfg.JavaPath)
	assert.Equal(t, defaultWorkerCount, cfg.Workers)
	assert.Equal(t, defaultPresignTTL, cfg.PresignTTL)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rreport.yaml")
	content := []byte(`
temp_directory: /var/tmp/reports
cache_resources: false
api_endpoint: http://reports.local/api
api_timeout: 30s
jar_path: /opt/rreport/rreport.jar
resource_directory: /srv/report-resources
workers: 0
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("RREPORT_JAR_PATH", "/srv/rreport.jar")
	t.Setenv("RREPORT_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/reports", cfg.TempDirectory)
	assert.False(t, cfg.CacheResources)
	assert.Equal(t, "http://reports.local/api", cfg.APIEndpoint)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "/srv/rreport.jar", cfg.JarPath)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/srv/report-resources", cfg.ResourceDirectory)
	assert.Equal(t, defaultWorkerCount, cfg.Workers, "non-positive workers fall back to the default")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
