package monitor

import (
	"maps"
	"sync"
	"time"
)

// DefinitionState is the live state of one definition.
type DefinitionState struct {
	Name        string        `json:"name"`
	Status      string        `json:"status"`
	Cases       int           `json:"cases"`
	CasesPassed int           `json:"cases_passed"`
	CasesFailed int           `json:"cases_failed"`
	Duration    time.Duration `json:"duration,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Definitions int     `json:"definitions"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Errored     int     `json:"errored"`
	Running     int     `json:"running"`
	PassRate    float64 `json:"pass_rate"`
	Elapsed     string  `json:"elapsed"`
}

// DashboardSnapshot is an immutable copy of dashboard state.
type DashboardSnapshot struct {
	RunID       string                     `json:"run_id"`
	StartTime   time.Time                  `json:"start_time"`
	Definitions map[string]DefinitionState `json:"definitions"`
	Summary     DashboardSummary           `json:"summary"`
}

// DashboardData folds events into per-definition state.
type DashboardData struct {
	mu          sync.RWMutex
	runID       string
	startTime   time.Time
	definitions map[string]DefinitionState
	summary     DashboardSummary
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		runID:       runID,
		startTime:   time.Now(),
		definitions: make(map[string]DefinitionState),
	}
}

// UpdateFromEvent updates dashboard state from a run event.
func (d *DashboardData) UpdateFromEvent(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, exists := d.definitions[event.Definition]
	if !exists {
		state = DefinitionState{
			Name:   event.Definition,
			Status: "pending",
		}
	}

	switch event.Type {
	case EventArranged:
		state.Status = "running"
		state.Cases = event.Cases
	case EventArrangementFailed:
		state.Status = "error"
		state.Message = event.Message
	case EventCasePassed:
		state.CasesPassed++
	case EventCaseFailed:
		state.CasesFailed++
		if state.Message == "" {
			state.Message = event.Message
		}
	case EventRunCompleted:
		state.Status = event.Status
		state.Duration = event.Duration
	}

	d.definitions[event.Definition] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, def := range d.definitions {
		s.Definitions++
		switch def.Status {
		case "passed", "empty":
			s.Passed++
		case "failed":
			s.Failed++
		case "error":
			s.Errored++
		case "running":
			s.Running++
		}
	}
	if completed := s.Passed + s.Failed + s.Errored; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	d.summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DashboardSnapshot{
		RunID:       d.runID,
		StartTime:   d.startTime,
		Definitions: maps.Clone(d.definitions),
		Summary:     d.summary,
	}
}

// BuildDashboardData creates a DashboardData from an
// EventCollector by replaying all collected events.
func BuildDashboardData(collector *EventCollector) *DashboardData {
	data := NewDashboardData("snapshot")
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
