package observability

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleLogger writes leveled, human-readable lines to a single writer.
// Debug output is suppressed unless the logger was created with debug=true.
type ConsoleLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	debug  bool
	fields []Field
}

// NewConsole returns a ConsoleLogger writing to w.
func NewConsole(w io.Writer, debug bool) *ConsoleLogger {
	return &ConsoleLogger{mu: &sync.Mutex{}, w: w, debug: debug}
}

func (l *ConsoleLogger) Debug(msg string, fields ...Field) {
	if !l.debug {
		return
	}
	l.emit("DEBUG", msg, fields)
}

func (l *ConsoleLogger) Info(msg string, fields ...Field)  { l.emit("INFO", msg, fields) }
func (l *ConsoleLogger) Warn(msg string, fields ...Field)  { l.emit("WARN", msg, fields) }
func (l *ConsoleLogger) Error(msg string, fields ...Field) { l.emit("ERROR", msg, fields) }

func (l *ConsoleLogger) With(fields ...Field) Logger {
	child := *l
	child.fields = append(append([]Field(nil), l.fields...), fields...)
	return &child
}

func (l *ConsoleLogger) emit(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s", level, msg)
	for _, f := range l.fields {
		fmt.Fprintf(l.w, " %s=%v", f.Key(), f.Value())
	}
	for _, f := range fields {
		fmt.Fprintf(l.w, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(l.w)
}
