package utils

import (
	"log"
	"os"
)

// Logger is a thin wrapper over the standard logger so components can take a
// nil logger in tests without guarding every call site twice.
type Logger struct {
	std *log.Logger
}

func NewLogger() *Logger {
	return &Logger{std: log.New(os.Stdout, "", log.LstdFlags)}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.std == nil {
		return
	}
	l.std.Printf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.std == nil {
		return
	}
	l.std.Printf("ERROR "+format, args...)
}
