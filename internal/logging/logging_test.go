package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", "json")
	defer Setup(nil, "info", "json")

	log.WithField("nickname", "bobby").Debug("user searched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user searched", entry["msg"])
	assert.Equal(t, "bobby", entry["nickname"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "loud", "text")
	defer Setup(nil, "info", "json")

	assert.Equal(t, log.InfoLevel, log.GetLevel())

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
