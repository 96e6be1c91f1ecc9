package logger

import "sync/atomic"

var loggerPtr atomic.Pointer[Logger]

// SetLogger installs the process-wide logger. Passing nil clears it; the
// Log* helpers become no-ops when no logger is installed.
func SetLogger(l *Logger) {
	loggerPtr.Store(l)
}

// ActiveLogger returns the installed logger, or nil.
func ActiveLogger() *Logger {
	return loggerPtr.Load()
}

func LogDebug(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Debug(msg)
	}
}

func LogInfo(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Info(msg)
	}
}

func LogWarn(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Warn(msg)
	}
}

func LogError(msg string) {
	if l := ActiveLogger(); l != nil {
		l.Error(msg)
	}
}
