package util

import (
	"io"
	"log"
	"os"
	"strings"

	jww "github.com/spf13/jwalterweatherman"
)

var (
	loggers = map[string]*Logger{}
	levels  = map[string]jww.Threshold{}

	// OutThreshold is the default console log level
	OutThreshold = jww.LevelError

	// LogThreshold is the default log file level
	LogThreshold = jww.LevelWarn
)

// Logger wraps a jww notepad to avoid leaking implementation detail
type Logger struct {
	*jww.Notepad
	name string
}

// NewLogger creates a logger with the given log area and adds it to the registry
func NewLogger(area string) *Logger {
	level := LogLevelForArea(area)
	notepad := jww.NewNotepad(level, level, os.Stdout, io.Discard, area, log.Ldate|log.Ltime)

	l := &Logger{
		Notepad: notepad,
		name:    area,
	}
	loggers[area] = l

	return l
}

// Name returns the loggers name
func (l *Logger) Name() string {
	return l.name
}

// LoggersWithLevel returns all loggers with their level
func LoggersWithLevel() map[string]jww.Threshold {
	res := make(map[string]jww.Threshold, len(loggers))
	for name := range loggers {
		res[name] = LogLevelForArea(name)
	}
	return res
}

// LogLevelForArea returns the log level for given log area
func LogLevelForArea(area string) jww.Threshold {
	level, ok := levels[strings.ToLower(area)]
	if !ok {
		level = OutThreshold
	}
	return level
}

// LogLevel sets log level for all loggers
func LogLevel(defaultLevel string, areaLevels map[string]string) {
	// default level
	OutThreshold = LogLevelToThreshold(defaultLevel)
	LogThreshold = OutThreshold

	// area levels
	for area, level := range areaLevels {
		area = strings.ToLower(area)
		levels[area] = LogLevelToThreshold(level)
	}

	// apply to existing loggers
	for name, l := range loggers {
		level := LogLevelForArea(name)
		l.SetStdoutThreshold(level)
		l.SetLogThreshold(level)
	}
}

// LogLevelToThreshold converts log level string to a jww threshold
func LogLevelToThreshold(level string) jww.Threshold {
	switch strings.ToUpper(level) {
	case "FATAL":
		return jww.LevelFatal
	case "ERROR":
		return jww.LevelError
	case "WARN":
		return jww.LevelWarn
	case "INFO":
		return jww.LevelInfo
	case "DEBUG":
		return jww.LevelDebug
	case "TRACE":
		return jww.LevelTrace
	default:
		panic("invalid log level " + level)
	}
}
