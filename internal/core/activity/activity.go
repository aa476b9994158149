// Package activity implements the append-only operator audit log: one
// text file per calendar day, one line per event.
package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Event names recorded in the activity log.
const (
	EventCompleted         = "COMPLETED"
	EventApprovalRequested = "APPROVAL_REQUESTED"
	EventApprovalDecision  = "APPROVAL_DECISION"
	EventPlanCreated       = "PLAN_CREATED"
	EventIngested          = "INGESTED"
)

// Log appends events to daily files under a logs directory. It is safe
// for concurrent use by independent processes: every record is a single
// O_APPEND write.
type Log struct {
	dir string
	now func() time.Time
}

// New creates a Log writing under dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// NewAt creates a Log with a fixed clock, for tests.
func NewAt(dir string, now func() time.Time) *Log {
	return &Log{dir: dir, now: now}
}

// Record appends one event line to today's log file, creating the file
// and directory as needed. Line format: [HH:MM:SS] EVENT: id - detail.
func (l *Log) Record(event, id, detail string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	now := l.now()
	line := fmt.Sprintf("[%s] %s: %s - %s\n", now.Format("15:04:05"), event, id, detail)

	f, err := os.OpenFile(l.path(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}

	return nil
}

// Tail returns up to n entries from today's log, most recent first. A
// missing log file yields an empty slice.
func (l *Log) Tail(n int) ([]string, error) {
	data, err := os.ReadFile(l.path(l.now()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read activity log: %w", err)
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			entries = append(entries, line)
		}
	}

	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	// Most recent first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

func (l *Log) path(t time.Time) string {
	return filepath.Join(l.dir, t.Format("2006-01-02")+".txt")
}
