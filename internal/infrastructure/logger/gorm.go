package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig tunes statement logging
type GormConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration // zero disables slow statement warnings
	// ReportNotFound logs gorm.ErrRecordNotFound as an error. Lookups of
	// unknown lots and statements are ordinary, so it is off by default.
	ReportNotFound bool
}

// GormLogger routes gorm statements through zap. Statements issued with a
// request or batch context carry the matching ids.
type GormLogger struct {
	logger *zap.Logger
	cfg    GormConfig
}

// NewGormLogger creates a gorm logger named "gorm" under zapLogger
func NewGormLogger(zapLogger *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{logger: zapLogger.Named("gorm"), cfg: cfg}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Info {
		L(ctx, l.logger).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Warn {
		L(ctx, l.logger).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Error {
		L(ctx, l.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and, at the Info
// level, every statement at debug
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && (l.cfg.ReportNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var level gormlogger.LogLevel
	switch {
	case failed:
		level = gormlogger.Error
	case slow:
		level = gormlogger.Warn
	default:
		level = gormlogger.Info
	}
	if l.cfg.Level < level {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	log := L(ctx, l.logger)
	switch level {
	case gormlogger.Error:
		log.Error("SQL Error", append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		log.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))...)
	default:
		log.Debug("SQL Query", fields...)
	}
}

// MapGormLogLevel maps a configured level name to a gorm level; unknown
// names mean warn
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
