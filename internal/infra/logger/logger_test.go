package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_LevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	NewWriter(&buf, "dev").Debug("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(NewWriter(&buf, "prod"), "ledger").Info("ok")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger", line["component"])
}
