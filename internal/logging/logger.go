package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger wraps the standard library logger with structured logging methods
type Logger struct {
	logger *log.Logger
}

// New creates a new Logger instance writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a Logger that writes to w
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a Logger that drops everything, handy in tests
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

// Info logs an informational message with structured key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues...)
}

// Warn logs a recoverable problem with structured key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("WARN", msg, keysAndValues...)
}

// Error logs an error message with structured key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues...)
}

// log formats and outputs a log message with key-value pairs
// keysAndValues should be pairs like: "key1", value1, "key2", value2
// A trailing key without a value is printed as key=MISSING.
func (l *Logger) log(level, msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)

	for i := 0; i < len(keysAndValues); i += 2 {
		key := keysAndValues[i]
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", key, keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v=MISSING", key)
		}
	}

	l.logger.Println(b.String())
}
