// Package monitor collects run lifecycle events and streams them
// to live observers over a WebSocket.
package monitor

import "time"

// EventType represents the type of run event.
type EventType string

const (
	EventArranged          EventType = "arranged"
	EventArrangementFailed EventType = "arrangement_failed"
	EventCaseStarted       EventType = "case_started"
	EventCasePassed        EventType = "case_passed"
	EventCaseFailed        EventType = "case_failed"
	EventRunCompleted      EventType = "run_completed"
)

// Event represents a lifecycle event during a definition run.
type Event struct {
	Type        EventType     `json:"type"`
	RunID       string        `json:"run_id,omitempty"`
	Definition  string        `json:"definition"`
	Case        int           `json:"case"`
	Description string        `json:"description,omitempty"`
	Cases       int           `json:"cases,omitempty"`
	Status      string        `json:"status,omitempty"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
