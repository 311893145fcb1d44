package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCollector_Emit(t *testing.T) {
	c := NewEventCollector()

	var received []Event
	var mu sync.Mutex
	c.OnEvent(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	c.Emit(Event{Type: EventCaseStarted, Definition: "adds"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, EventCaseStarted, received[0].Type)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestEventCollector_Helpers(t *testing.T) {
	c := NewEventCollector()
	c.EmitArranged("r1", "adds", 4)
	c.EmitCaseStarted("r1", "adds", 0, "(1, 2)")
	c.EmitCasePassed("r1", "adds", 0, time.Millisecond)
	c.EmitCaseFailed("r1", "adds", 1, "expected 3")
	c.EmitArrangementFailed("r1", "broken", "Arrangement failed: db down")
	c.EmitRunCompleted("r1", "adds", "failed", time.Second)

	events := c.Events()
	require.Len(t, events, 6)
	assert.Equal(t, 4, events[0].Cases)
	assert.Equal(t, "(1, 2)", events[1].Description)
	assert.Equal(t, "passed", events[2].Status)
	assert.Equal(t, 1, events[3].Case)
	assert.Equal(t, "expected 3", events[3].Message)
	assert.Equal(t, "error", events[4].Status)
	assert.Equal(t, EventRunCompleted, events[5].Type)

	stats := c.Stats()
	assert.Equal(t, 6, stats.Events)
	assert.Equal(t, 1, stats.Arranged)
	assert.Equal(t, 1, stats.ArrangementFailures)
	assert.Equal(t, 1, stats.CasesPassed)
	assert.Equal(t, 1, stats.CasesFailed)
	assert.Equal(t, 1, stats.Runs)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	c.EmitRunCompleted("r1", "adds", "passed", time.Second)
	c.Reset()

	assert.Empty(t, c.Events())
	assert.Equal(t, 0, c.Stats().Events)
}

func TestEventCollector_ConcurrentAccess(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.EmitCaseStarted("r1", "adds", i, "")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, c.Stats().Events)
}

func TestDashboardData_UpdateFromEvent(t *testing.T) {
	d := NewDashboardData("r1")
	d.UpdateFromEvent(Event{Type: EventArranged, Definition: "adds", Cases: 2})
	d.UpdateFromEvent(Event{Type: EventCasePassed, Definition: "adds"})
	d.UpdateFromEvent(Event{Type: EventCaseFailed, Definition: "adds", Message: "first"})
	d.UpdateFromEvent(Event{Type: EventCaseFailed, Definition: "adds", Message: "second"})
	d.UpdateFromEvent(Event{Type: EventRunCompleted, Definition: "adds", Status: "failed"})
	d.UpdateFromEvent(Event{Type: EventArrangementFailed, Definition: "broken", Message: "boom"})
	d.UpdateFromEvent(Event{Type: EventArranged, Definition: "inflight"})

	snap := d.Snapshot()
	assert.Equal(t, "r1", snap.RunID)

	adds := snap.Definitions["adds"]
	assert.Equal(t, "failed", adds.Status)
	assert.Equal(t, 2, adds.Cases)
	assert.Equal(t, 1, adds.CasesPassed)
	assert.Equal(t, 2, adds.CasesFailed)
	assert.Equal(t, "first", adds.Message)

	assert.Equal(t, "error", snap.Definitions["broken"].Status)
	assert.Equal(t, 3, snap.Summary.Definitions)
	assert.Equal(t, 1, snap.Summary.Failed)
	assert.Equal(t, 1, snap.Summary.Errored)
	assert.Equal(t, 1, snap.Summary.Running)
	assert.Equal(t, 0.0, snap.Summary.PassRate)
}

func TestDashboardData_SnapshotIsCopy(t *testing.T) {
	d := NewDashboardData("r1")
	d.UpdateFromEvent(Event{Type: EventRunCompleted, Definition: "a", Status: "passed"})
	snap := d.Snapshot()
	d.UpdateFromEvent(Event{Type: EventRunCompleted, Definition: "b", Status: "passed"})

	assert.Len(t, snap.Definitions, 1)
	assert.Equal(t, 100.0, d.Snapshot().Summary.PassRate)
}

func TestBuildDashboardData(t *testing.T) {
	c := NewEventCollector()
	c.EmitArranged("r1", "adds", 1)
	c.EmitRunCompleted("r1", "adds", "empty", 0)

	snap := BuildDashboardData(c).Snapshot()
	assert.Equal(t, "empty", snap.Definitions["adds"].Status)
	assert.Equal(t, 1, snap.Summary.Passed)
}
