// Package testingx provides test helpers shared by foundry packages.
//
// Overview:
//   - Responsibility: Recording logger and error-code assertions
//   - Key Types: RecordingLogger, LogEntry
//   - Concurrency Model: RecordingLogger is safe for concurrent use
//   - Error Semantics: Test failures via testing.TB
//   - Performance Notes: Entries are kept in memory for the life of the test
//
// Usage:
//
//	logger := testingx.NewRecordingLogger(t)
//	gen := scaffold.New(scaffold.Options{Logger: logger})
//	logger.AssertLogged("WARN", "output collision")
package testingx

import (
	"fmt"
	"sync"
	"testing"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
	"go.eggybyte.com/foundry/internal/logx"
)

// LogEntry is one recorded log call with its fields flattened.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]string
	Error   error
}

type sink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// RecordingLogger implements log.Logger and keeps every entry.
// Loggers derived with With share the same record.
type RecordingLogger struct {
	t      testing.TB
	sink   *sink
	fields []any
}

var _ log.Logger = (*RecordingLogger)(nil)

// NewRecordingLogger creates an empty recording logger.
func NewRecordingLogger(t testing.TB) *RecordingLogger {
	return &RecordingLogger{t: t, sink: &sink{}}
}

// With returns a logger that adds kv to every entry.
func (r *RecordingLogger) With(kv ...any) log.Logger {
	fields := append(append([]any(nil), r.fields...), kv...)
	return &RecordingLogger{t: r.t, sink: r.sink, fields: fields}
}

func (r *RecordingLogger) Debug(msg string, kv ...any) { r.record("DEBUG", msg, nil, kv) }
func (r *RecordingLogger) Info(msg string, kv ...any)  { r.record("INFO", msg, nil, kv) }
func (r *RecordingLogger) Warn(msg string, kv ...any)  { r.record("WARN", msg, nil, kv) }

func (r *RecordingLogger) Error(err error, msg string, kv ...any) {
	r.record("ERROR", msg, err, kv)
}

func (r *RecordingLogger) record(level, msg string, err error, kv []any) {
	all := append(append([]any(nil), r.fields...), kv...)
	fields := make(map[string]string)
	for _, attr := range logx.KVToAttrs(all) {
		fields[attr.Key] = fmt.Sprint(attr.Value.Any())
	}

	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.entries = append(r.sink.entries, LogEntry{Level: level, Message: msg, Fields: fields, Error: err})
}

// Entries returns a copy of every recorded entry, oldest first.
func (r *RecordingLogger) Entries() []LogEntry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	return append([]LogEntry(nil), r.sink.entries...)
}

// Find returns the entries with the given level and message.
func (r *RecordingLogger) Find(level, msg string) []LogEntry {
	var found []LogEntry
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			found = append(found, e)
		}
	}
	return found
}

// AssertLogged fails the test unless an entry with level and message exists.
// It returns the first match.
func (r *RecordingLogger) AssertLogged(level, msg string) LogEntry {
	r.t.Helper()
	found := r.Find(level, msg)
	if len(found) == 0 {
		r.t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
		return LogEntry{}
	}
	return found[0]
}

// AssertCode fails the test unless err carries the expected code.
func AssertCode(t testing.TB, err error, want errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", want)
	}
	if got := errors.CodeOf(err); got != want {
		t.Errorf("Expected error code %s, got %s (%v)", want, got, err)
	}
}
