package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterEmitsJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("debug", &buf), "cache")
	log.WithFields(map[string]interface{}{"key": "abc"}).Debugf("miss for %s", "/tmp/logo.png")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cache", line["component"])
	assert.Equal(t, "abc", line["key"])
	assert.Equal(t, "miss for /tmp/logo.png", line["msg"])
	assert.Equal(t, "debug", line["level"])
}

func TestLevelFiltersAndFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)
	log.Infof("hidden")
	assert.Zero(t, buf.Len())

	buf.Reset()
	log = NewWithWriter("not-a-level", &buf)
	log.Infof("shown")
	assert.Contains(t, buf.String(), "shown")
}
