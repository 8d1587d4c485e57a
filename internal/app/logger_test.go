package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"json":    `"msg":"hello"`,
		"":        `"msg":"hello"`,
		"text":    `msg=hello`,
		"zerolog": `"message":"hello"`,
		"console": `hello`,
	}
	for format, want := range cases {
		var buf bytes.Buffer
		NewLogger(config.Log{Format: format, Level: "info"}, &buf).Info("hello")
		require.Containsf(t, buf.String(), want, "format %q", format)
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(config.Log{Format: "json", Level: "warn"}, &buf)
	logger.Info("quiet")
	logger.Warn("loud")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
}
