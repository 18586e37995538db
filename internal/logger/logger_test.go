package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"", zerolog.InfoLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"verbose", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZerologAdapterFields(t *testing.T) {
	var out bytes.Buffer
	log := NewZerolog(&out, zerolog.DebugLevel)

	log.Info("Partitioner", "region processed", map[string]interface{}{"depth": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Partitioner", entry["component"])
	assert.Equal(t, "region processed", entry["message"])
	assert.Equal(t, float64(2), entry["depth"])
}

func TestZerologAdapterError(t *testing.T) {
	var out bytes.Buffer
	log := NewZerolog(&out, zerolog.InfoLevel)

	log.Debug("ImageService", "hidden", nil)
	assert.Zero(t, out.Len())

	log.Error("ImageService", errors.New("boom"), nil)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "operation failed", entry["message"])

	assert.True(t, log.Enabled(zerolog.WarnLevel))
	assert.False(t, log.Enabled(zerolog.DebugLevel))
}
