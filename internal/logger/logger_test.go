package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestNewLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		env       string
		wantDebug bool
	}{
		{name: "development", env: EnvDevelopment, wantDebug: true},
		{name: "staging", env: EnvStaging, wantDebug: true},
		{name: "production", env: EnvProduction, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.env)
			require.NotNil(t, log)
			assert.Equal(t, tt.wantDebug, log.Enabled(ctx, slog.LevelDebug))
			assert.True(t, log.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(EnvProduction, &buf)

	log.Info("stored", slog.Int64("id", 4), Err(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stored", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 4, entry["id"])
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}
