package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	prev := Logger.GetLevel()
	defer Logger.SetLevel(prev)

	tests := []struct {
		name  string
		ok    bool
		level log.Level
	}{
		{"debug", true, log.DebugLevel},
		{" INFO ", true, log.InfoLevel},
		{"warning", true, log.WarnLevel},
		{"Error", true, log.ErrorLevel},
		{"fatal", true, log.FatalLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, SetLevel(tt.name), tt.name)
		assert.Equal(t, tt.level, Logger.GetLevel(), tt.name)
	}

	Logger.SetLevel(log.WarnLevel)
	assert.False(t, SetLevel("verbose"))
	assert.False(t, SetLevel(""))
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())
}

func TestSetOutput(t *testing.T) {
	prev := Logger.GetLevel()
	defer func() {
		Logger.SetLevel(prev)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	Logger.SetLevel(log.InfoLevel)

	Infof("device %s opened", "event3")
	Debug("hidden")

	assert.Contains(t, buf.String(), "device event3 opened")
	assert.NotContains(t, buf.String(), "hidden")
}
