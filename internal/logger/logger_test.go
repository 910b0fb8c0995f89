package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel logrus.Level
	}{
		{name: "debug", level: "DEBUG", wantLevel: logrus.DebugLevel},
		{name: "warn", level: " warn ", wantLevel: logrus.WarnLevel},
		{name: "unknown falls back", level: "chatty", wantLevel: logrus.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			log := NewWithOutput(testCase.level, "text", &bytes.Buffer{})
			assert.Equal(t, testCase.wantLevel, log.GetLevel())
		})
	}
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", "json", &buf)

	Component(log, "cache").WithField("key", "menu:thai").Warn("cache put failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cache", line["component"])
	assert.Equal(t, "menu:thai", line["key"])
	assert.Equal(t, "warning", line["level"])
}
