package audit

import (
	"context"
	"errors"
	"log"
)

// LogLogger writes audit entries to a standard logger. Used when no database
// is configured.
type LogLogger struct {
	logger *log.Logger
}

// NewLogLogger constructs a log-backed audit logger.
func NewLogLogger(logger *log.Logger) *LogLogger {
	if logger == nil {
		return nil
	}
	return &LogLogger{logger: logger}
}

// Log prints the entry on one line.
func (l *LogLogger) Log(_ context.Context, entry Entry) error {
	if l == nil || l.logger == nil {
		return errors.New("audit log: nil logger")
	}
	entry = complete(entry)
	l.logger.Printf("audit id=%s action=%s resource=%s/%s actor=%q role=%s ip=%s metadata=%s",
		entry.ID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Actor, entry.Role, entry.IP, string(entry.Metadata))
	return nil
}
