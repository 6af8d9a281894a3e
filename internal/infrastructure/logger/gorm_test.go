package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogModeDoesNotMutate(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), GormConfig{Level: gormlogger.Info, SlowThreshold: time.Second})
	clone := gl.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.cfg.Level)
	assert.Equal(t, gormlogger.Silent, clone.cfg.Level)
	assert.Equal(t, time.Second, clone.cfg.SlowThreshold)
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }
	tests := []struct {
		name    string
		cfg     GormConfig
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"query at info", GormConfig{Level: gormlogger.Info}, time.Now(), nil, "SQL Query"},
		{"query hidden at warn", GormConfig{Level: gormlogger.Warn}, time.Now(), nil, ""},
		{"error", GormConfig{Level: gormlogger.Warn}, time.Now(), errors.New("boom"), "SQL Error"},
		{"not found ignored", GormConfig{Level: gormlogger.Warn}, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"not found reported", GormConfig{Level: gormlogger.Warn, ReportNotFound: true}, time.Now(), gormlogger.ErrRecordNotFound, "SQL Error"},
		{"slow", GormConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond}, time.Now().Add(-time.Second), nil, "Slow SQL"},
		{"slow but errors only", GormConfig{Level: gormlogger.Error, SlowThreshold: time.Millisecond}, time.Now().Add(-time.Second), nil, ""},
		{"silent", GormConfig{Level: gormlogger.Silent}, time.Now(), errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.cfg)

			ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
			gl.Trace(ctx, tt.begin, sql, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, logs.Len())
				return
			}
			entries := logs.FilterMessage(tt.wantMsg).All()
			require.Len(t, entries, 1)
			assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
			assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
		})
	}
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
