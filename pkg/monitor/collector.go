package monitor

import (
	"sync"
	"time"
)

// EventCollector captures run events and timing data.
type EventCollector struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Events              int           `json:"events"`
	Runs                int           `json:"runs"`
	Arranged            int           `json:"arranged"`
	ArrangementFailures int           `json:"arrangement_failures"`
	CasesPassed         int           `json:"cases_passed"`
	CasesFailed         int           `json:"cases_failed"`
	StartTime           time.Time     `json:"start_time"`
	Duration            time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]Event, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
// Handlers run synchronously on the emitting goroutine.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.stats.Events++
	switch event.Type {
	case EventArranged:
		c.stats.Arranged++
	case EventArrangementFailed:
		c.stats.ArrangementFailures++
	case EventCasePassed:
		c.stats.CasesPassed++
	case EventCaseFailed:
		c.stats.CasesFailed++
	case EventRunCompleted:
		c.stats.Runs++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitArranged emits an event for a definition that arranged
// the given number of cases.
func (c *EventCollector) EmitArranged(runID, definition string, cases int) {
	c.Emit(Event{
		Type:       EventArranged,
		RunID:      runID,
		Definition: definition,
		Cases:      cases,
	})
}

// EmitArrangementFailed emits an event for a definition whose
// Given clauses failed.
func (c *EventCollector) EmitArrangementFailed(runID, definition, msg string) {
	c.Emit(Event{
		Type:       EventArrangementFailed,
		RunID:      runID,
		Definition: definition,
		Status:     "error",
		Message:    msg,
	})
}

// EmitCaseStarted emits a case started event.
func (c *EventCollector) EmitCaseStarted(
	runID, definition string, index int, description string,
) {
	c.Emit(Event{
		Type:        EventCaseStarted,
		RunID:       runID,
		Definition:  definition,
		Case:        index,
		Description: description,
	})
}

// EmitCasePassed emits a case passed event.
func (c *EventCollector) EmitCasePassed(
	runID, definition string, index int, duration time.Duration,
) {
	c.Emit(Event{
		Type:       EventCasePassed,
		RunID:      runID,
		Definition: definition,
		Case:       index,
		Status:     "passed",
		Duration:   duration,
	})
}

// EmitCaseFailed emits a case failed event carrying the first
// failure message.
func (c *EventCollector) EmitCaseFailed(
	runID, definition string, index int, msg string,
) {
	c.Emit(Event{
		Type:       EventCaseFailed,
		RunID:      runID,
		Definition: definition,
		Case:       index,
		Status:     "failed",
		Message:    msg,
	})
}

// EmitRunCompleted emits the terminal event of a run.
func (c *EventCollector) EmitRunCompleted(
	runID, definition, status string, duration time.Duration,
) {
	c.Emit(Event{
		Type:       EventRunCompleted,
		RunID:      runID,
		Definition: definition,
		Status:     status,
		Duration:   duration,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
