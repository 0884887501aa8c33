// Package logger is the leveled logger used by the jfifmeta command.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level    = LevelWarn
	mu       sync.Mutex
	debugLog = log.New(os.Stderr, "[DEBUG] ", log.LstdFlags)
	infoLog  = log.New(os.Stderr, "[INFO] ", log.LstdFlags)
	warnLog  = log.New(os.Stderr, "[WARN] ", log.LstdFlags)
	errorLog = log.New(os.Stderr, "[ERROR] ", log.LstdFlags)
)

// SetOutput sets the output for all loggers.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	debugLog.SetOutput(w)
	infoLog.SetOutput(w)
	warnLog.SetOutput(w)
	errorLog.SetOutput(w)
}

// SetFlags sets the output flags for all loggers.
func SetFlags(flags int) {
	mu.Lock()
	defer mu.Unlock()

	debugLog.SetFlags(flags)
	infoLog.SetFlags(flags)
	warnLog.SetFlags(flags)
	errorLog.SetFlags(flags)
}

// ParseLevel returns the level named by s.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning", "":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// SetLevel sets the log level. Unknown names fall back to warn.
func SetLevel(levelStr string) {
	l, _ := ParseLevel(levelStr)

	mu.Lock()
	defer mu.Unlock()
	level = l
}

func enabled(l int) bool {
	mu.Lock()
	defer mu.Unlock()
	return level <= l
}

// Debug logs a debug message
func Debug(format string, v ...any) {
	if enabled(LevelDebug) {
		debugLog.Output(2, fmt.Sprintf(format, v...))
	}
}

// Info logs an info message
func Info(format string, v ...any) {
	if enabled(LevelInfo) {
		infoLog.Output(2, fmt.Sprintf(format, v...))
	}
}

// Warn logs a warning message
func Warn(format string, v ...any) {
	if enabled(LevelWarn) {
		warnLog.Output(2, fmt.Sprintf(format, v...))
	}
}

// Error logs an error message
func Error(format string, v ...any) {
	if enabled(LevelError) {
		errorLog.Output(2, fmt.Sprintf(format, v...))
	}
}

// Decoder forwards decoder diagnostics to the package loggers,
// prefixed with the name of the input being decoded.
type Decoder struct {
	Name string
}

func (d Decoder) Debugf(format string, args ...any) {
	Debug("%s: %s", d.Name, fmt.Sprintf(format, args...))
}

func (d Decoder) Infof(format string, args ...any) {
	Info("%s: %s", d.Name, fmt.Sprintf(format, args...))
}

func (d Decoder) Warnf(format string, args ...any) {
	Warn("%s: %s", d.Name, fmt.Sprintf(format, args...))
}
