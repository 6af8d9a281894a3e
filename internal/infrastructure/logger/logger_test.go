package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "console", cfg: &Config{Level: "info", Format: "console", Output: "stdout"}},
		{name: "json with service", cfg: &Config{Level: "debug", Format: "json", Output: "stderr", Service: "feedlot"}},
		{name: "empty level means info", cfg: &Config{Format: "json"}},
		{name: "unknown level", cfg: &Config{Level: "verbose"}, wantErr: true},
		{name: "unwritable file", cfg: &Config{Level: "info", Format: "json", Output: "/nonexistent/dir/app.log"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path, Service: "feedlot"})
	require.NoError(t, err)

	l.Info("allocation posted", zap.String("pen_id", "p1"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"allocation posted"`)
	assert.Contains(t, string(data), `"service":"feedlot"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" warn ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("bogus")
	assert.ErrorContains(t, err, "bogus")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	l, err := New(&Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("lot created")
	l.Warn("pen over capacity", zap.Int("occupancy", 130))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "lot created")
	assert.Contains(t, string(data), `"occupancy":130`)
}

func TestContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, batchLogger := WithBatchID(ctx, FromContext(ctx), "batch-7")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "batch-7", GetBatchID(ctx))

	batchLogger.Info("from context")
	L(ctx, base).Info("enriched")

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		fields := e.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"], e.Message)
		assert.Equal(t, "batch-7", fields["batch_id"], e.Message)
	}
}

func TestL_WithoutIDs(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, L(context.Background(), base))
}
