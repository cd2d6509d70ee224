package logger

import "sync/atomic"

var defLogger atomic.Pointer[loggerHolder]

type loggerHolder struct {
	Logger
}

func init() {
	defLogger.Store(&loggerHolder{NewSlog(InfoLevel)})
}

func current() Logger {
	return defLogger.Load().Logger
}

// SetDefault replaces the package level logger. A nil logger is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defLogger.Store(&loggerHolder{l})
}

// GetLogger returns the package level logger.
func GetLogger() Logger {
	return current()
}

func Debug(msg string, keysAndValues ...any) {
	current().Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	current().Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	current().Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	current().Error(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...any) {
	current().Fatal(msg, keysAndValues...)
}

func SetLevel(level Level) {
	current().SetLevel(level)
}

func With(keyValues ...any) Logger {
	return current().With(keyValues...)
}
