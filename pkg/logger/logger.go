package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the whole service. Init once during startup; the
// default level is Info. Controlled with LOG_LEVEL (debug|info|warn|error|fatal).

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	out    *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
	exitFn             = os.Exit
)

// Init sets the global log level (case-insensitive).
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
	case "warn", "warning":
		level = LevelWarn
	case "error":
		level = LevelError
	case "fatal":
		level = LevelFatal
	default:
		level = LevelInfo
	}
}

func header(lvl string) string {
	return fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func Debugf(format string, v ...any) {
	if enabled(LevelDebug) {
		out.Printf(header("debug")+format, v...)
	}
}

func Infof(format string, v ...any) {
	if enabled(LevelInfo) {
		out.Printf(header("info")+format, v...)
	}
}

func Warnf(format string, v ...any) {
	if enabled(LevelWarn) {
		out.Printf(header("warn")+format, v...)
	}
}

func Errorf(format string, v ...any) {
	if enabled(LevelError) {
		out.Printf(header("error")+format, v...)
	}
}

// Fatalf logs and terminates the process. Reserved for unrecoverable startup
// failures such as missing required configuration.
func Fatalf(format string, v ...any) {
	out.Printf(header("fatal")+format, v...)
	exitFn(1)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
