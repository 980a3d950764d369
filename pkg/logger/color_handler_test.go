package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorHandler(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		message  string
		wantCode string
	}{
		{
			name:     "error message has red color",
			level:    slog.LevelError,
			message:  "failed to render prompt",
			wantCode: colorRed,
		},
		{
			name:     "warning message has yellow color",
			level:    slog.LevelWarn,
			message:  "Unknown source description, falling back to default template set",
			wantCode: colorYellow,
		},
		{
			name:     "info message has no color",
			level:    slog.LevelInfo,
			message:  "Using default prompt",
			wantCode: "",
		},
		{
			name:     "domain routing message has green color",
			level:    slog.LevelInfo,
			message:  "Using domain-specific prompt",
			wantCode: colorGreen,
		},
		{
			name:     "domain registration message has green color",
			level:    slog.LevelInfo,
			message:  "Registered domain template set",
			wantCode: colorGreen,
		},
		{
			name:     "debug message has no color",
			level:    slog.LevelDebug,
			message:  "No source description about domain",
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelDebug)
			logger.Log(t.Context(), tt.level, tt.message)

			output := buf.String()
			assert.Contains(t, output, tt.message)

			if tt.wantCode != "" {
				assert.Contains(t, output, tt.wantCode)
				assert.Contains(t, output, colorReset)
				return
			}
			for _, code := range []string{colorRed, colorYellow, colorGreen} {
				assert.NotContains(t, output, code)
			}
		})
	}
}

func TestColorHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug)

	logger.With("component", "registry").WithGroup("req").Error("render failed", "family", "extract_nodes")

	output := buf.String()
	assert.Contains(t, output, "render failed")
	assert.Contains(t, output, "component=registry")
	assert.Contains(t, output, "req.family=extract_nodes")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestColorHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("Using domain-specific prompt")
	logger.Debug("debug message")
	assert.Empty(t, buf.String())

	logger.Warn("warning message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", FormatColor, FormatText, FormatJSON} {
		var buf bytes.Buffer
		logger, err := New(&buf, slog.LevelInfo, format)
		require.NoError(t, err, format)
		logger.Info("hello", "key", "value")
		assert.Contains(t, buf.String(), "hello", format)
	}

	var buf bytes.Buffer
	logger, err := New(&buf, slog.LevelInfo, FormatJSON)
	require.NoError(t, err)
	logger.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = New(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
