package badgerkv

import (
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// Compile-time check that zapLogger implements badger.Logger.
var _ badger.Logger = (*zapLogger)(nil)

// zapLogger adapts a zap logger to badger.Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newLogger(l *zap.Logger) *zapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *zapLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l *zapLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l *zapLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }
