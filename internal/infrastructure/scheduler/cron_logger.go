package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger routes cron's internal logging to zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(l *zap.Logger) cron.Logger {
	return &cronLogger{sugar: l.Sugar()}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
