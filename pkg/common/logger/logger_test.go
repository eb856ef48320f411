package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

func TestLogLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Config{
		Level:  logger.LevelInfo,
		Format: logger.FormatText,
		Output: buf,
	})

	log.Debug("debug message")
	assert.NotContains(t, buf.String(), "debug message")

	buf.Reset()
	log.Info("info message")
	assert.Contains(t, buf.String(), "info message")

	buf.Reset()
	log.Warn("spawned git", "args", "cat-file -p")
	assert.Contains(t, buf.String(), "spawned git")
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Config{
		Level:  logger.LevelInfo,
		Format: logger.FormatJSON,
		Output: buf,
	})

	log.Info("enumerated", "objects", 3)

	out := buf.String()
	assert.Contains(t, out, `"msg":"enumerated"`)
	assert.Contains(t, out, `"objects":3`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.Level
		wantErr bool
	}{
		{"debug", logger.LevelDebug, false},
		{"INFO", logger.LevelInfo, false},
		{"", logger.LevelInfo, false},
		{"warning", logger.LevelWarn, false},
		{"error", logger.LevelError, false},
		{"loud", logger.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := logger.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, logger.FormatJSON, f)

	f, err = logger.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, logger.FormatText, f)

	_, err = logger.ParseFormat("xml")
	assert.Error(t, err)
}

func TestDiscardAndOrDefault(t *testing.T) {
	d := logger.Discard()
	d.Error("never printed")
	assert.Same(t, d, logger.OrDefault(d))
	assert.Same(t, logger.Default, logger.OrDefault(nil))
}
