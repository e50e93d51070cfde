package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/hscode-reconciler/internal/logging"
)

func TestConfigureJSON(t *testing.T) {
	previous := *logging.Default()
	defer logging.SetDefault(previous)

	buf := &bytes.Buffer{}
	logging.Configure(logging.Config{Level: "warn", Format: "json", Output: buf})

	logging.Info().Msg("hidden")
	logging.Warn().Str("stage", "invoice").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"stage":"invoice"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}
