package logger

import (
	"go.uber.org/zap"

	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// ZapLogger implements IAppLogger on top of a zap SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a production zap logger. The returned cleanup flushes
// buffered entries and should be deferred by the caller.
func NewZapLogger() (usecasecontract.IAppLogger, func(), error) {
	zl, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = zl.Sync() }
	return &ZapLogger{sugar: zl.Sugar()}, cleanup, nil
}

// FromZap wraps an existing zap logger so structured and printf-style
// logging share one core.
func FromZap(zl *zap.Logger) usecasecontract.IAppLogger {
	return &ZapLogger{sugar: zl.Sugar()}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() usecasecontract.IAppLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// Debugf logs a debug message.
func (l *ZapLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Infof logs an info message.
func (l *ZapLogger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warnf logs a warning message.
func (l *ZapLogger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Errorf logs an error message.
func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatalf logs a fatal message and exits.
func (l *ZapLogger) Fatalf(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}
