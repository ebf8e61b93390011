package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the API server, the ingestion job and the CLI.
// Components get a prefixed view through Named.

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
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
	exit               = os.Exit
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	lvl := ParseLevel(l)
	mu.Lock()
	level = lvl
	mu.Unlock()
}

// ParseLevel maps a level name to a Level.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects all log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = log.New(w, "", 0)
	mu.Unlock()
}

func (l Level) String() string {
	switch l {
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

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func write(l Level, component, format string, v ...interface{}) {
	if l != LevelFatal && !enabled(l) {
		return
	}
	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(strings.ToUpper(l.String()))
	b.WriteString("] ")
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(fmt.Sprintf(format, v...))

	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Print(b.String())
}

func Debugf(format string, v ...interface{}) { write(LevelDebug, "", format, v...) }
func Infof(format string, v ...interface{})  { write(LevelInfo, "", format, v...) }
func Warnf(format string, v ...interface{})  { write(LevelWarn, "", format, v...) }
func Errorf(format string, v ...interface{}) { write(LevelError, "", format, v...) }

func Fatalf(format string, v ...interface{}) {
	write(LevelFatal, "", format, v...)
	exit(1)
}

func Info(v string) { Infof("%s", v) }
func Warn(v string) { Warnf("%s", v) }

// Component is a logger view that prefixes every line with a component name.
type Component struct {
	name string
}

// Named returns a component logger, e.g. Named("ingest").Infof(...).
func Named(name string) *Component {
	return &Component{name: name}
}

func (c *Component) Debugf(format string, v ...interface{}) { write(LevelDebug, c.name, format, v...) }
func (c *Component) Infof(format string, v ...interface{})  { write(LevelInfo, c.name, format, v...) }
func (c *Component) Warnf(format string, v ...interface{})  { write(LevelWarn, c.name, format, v...) }
func (c *Component) Errorf(format string, v ...interface{}) { write(LevelError, c.name, format, v...) }
