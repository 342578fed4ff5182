package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_SetLogLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLogLevel("debug")
	l.Debug("shown", "step", "bridge")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "step=bridge")
}

func TestLogger_ConfigureFromEnv(t *testing.T) {
	t.Setenv("WGATE_LOG_LEVEL", "error")

	var buf bytes.Buffer
	l := New(&buf)
	l.ConfigureFromEnv()

	assert.Equal(t, log.ErrorLevel, l.GetLevel())
}

func TestLogger_WithRunReplacesPrevious(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLogLevel("debug")

	l.WithRun("first")
	l.WithRun("second")
	l.Debug("provisioning")

	out := buf.String()
	assert.Contains(t, out, "run=second")
	assert.NotContains(t, out, "run=first")
}
