package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.gwt/pkg/result"
)

func fixtureRuns() []*result.Run {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sumCheck := func(passed bool, msg string) []result.Assertion {
		return []result.Assertion{{
			Description: "is the sum",
			Expectation: "returns",
			Passed:      passed,
			Message:     msg,
		}}
	}
	return []*result.Run{
		{
			RunID:      "run-1",
			Definition: "adds",
			Status:     result.StatusPassed,
			StartTime:  start,
			EndTime:    start.Add(1500 * time.Millisecond),
			Duration:   1500 * time.Millisecond,
			Cases: []result.Case{
				{Index: 0, Description: "(1, 10)", Status: result.StatusPassed,
					Outcome: "returned 11", Assertions: sumCheck(true, "")},
				{Index: 1, Description: "(2, 10)", Status: result.StatusPassed,
					Outcome: "returned 12", Assertions: sumCheck(true, "")},
			},
		},
		{
			RunID:      "run-2",
			Definition: "divides",
			Status:     result.StatusFailed,
			StartTime:  start,
			EndTime:    start.Add(12 * time.Millisecond),
			Duration:   12 * time.Millisecond,
			Cases: []result.Case{
				{Index: 0, Description: "(2)", Status: result.StatusPassed,
					Outcome: "returned 5",
					Assertions: []result.Assertion{{
						Description: "returns", Expectation: "returns", Passed: true,
					}}},
				{Index: 1, Description: "(0)", Status: result.StatusFailed,
					Outcome: "threw division by zero", Threw: true,
					Assertions: []result.Assertion{{
						Description: "returns",
						Expectation: "returns",
						Message: `assertion "returns" failed: expected a return ` +
							`but an unexpected error was thrown: division by zero`,
					}}},
			},
		},
		{
			RunID:      "run-3",
			Definition: "broken",
			Status:     result.StatusError,
			StartTime:  start,
			EndTime:    start.Add(3 * time.Millisecond),
			Duration:   3 * time.Millisecond,
			Error:      `Arrangement failed: given "rows": db down`,
		},
		{
			RunID:      "run-4",
			Definition: "nothing",
			Status:     result.StatusEmpty,
			StartTime:  start,
			EndTime:    start,
		},
	}
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestConsoleReporter_Golden(t *testing.T) {
	r := NewConsoleReporter(false, false)
	runs := fixtureRuns()

	var buf bytes.Buffer
	for _, run := range runs {
		require.NoError(t, r.WriteReport(&buf, run))
	}
	summary, err := r.GenerateSummary(runs)
	require.NoError(t, err)
	buf.Write(summary)

	golden(t).Assert(t, "console_report", buf.Bytes())
}

func TestConsoleReporter_Verbose_Golden(t *testing.T) {
	r := NewConsoleReporter(false, true)
	runs := fixtureRuns()[:2]

	var buf bytes.Buffer
	for _, run := range runs {
		data, err := r.GenerateReport(run)
		require.NoError(t, err)
		buf.Write(data)
	}

	golden(t).Assert(t, "console_report_verbose", buf.Bytes())
}

func TestConsoleReporter_CaseError(t *testing.T) {
	r := NewConsoleReporter(false, false)
	out, err := r.GenerateReport(&result.Run{
		RunID:      "run-9",
		Definition: "hooked",
		Status:     result.StatusFailed,
		Cases: []result.Case{{
			Index:       0,
			Description: "(1)",
			Status:      result.StatusFailed,
			Error:       "before hook failed: not today",
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "  FAIL #0 (1)\n")
	assert.Contains(t, string(out), "! before hook failed: not today")
}

func TestConsoleReporter_Color(t *testing.T) {
	r := NewConsoleReporter(true, false)
	r.pass.EnableColor()
	out, err := r.GenerateReport(fixtureRuns()[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "\x1b[")
}

func TestJSONReporter(t *testing.T) {
	runs := fixtureRuns()

	compact := NewJSONReporter(false)
	data, err := compact.GenerateReport(runs[2])
	require.NoError(t, err)
	var decoded result.Run
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.StatusError, decoded.Status)
	assert.Equal(t, runs[2].Error, decoded.Error)

	pretty := NewJSONReporter(true)
	var buf bytes.Buffer
	require.NoError(t, pretty.WriteReport(&buf, runs[0]))
	assert.Contains(t, buf.String(), "\n  \"run_id\": \"run-1\"")

	sum, err := pretty.GenerateSummary(runs)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(sum, &raw))
	assert.Equal(t, float64(4), raw["total"])
	assert.Equal(t, float64(1), raw["errored"])
	assert.Len(t, raw["runs"], 4)
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(fixtureRuns())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Errored)
	assert.Equal(t, 1, s.Empty)
	assert.Equal(t, 4, s.CasesTotal)
	assert.Equal(t, 3, s.CasesPassed)
	assert.Equal(t, 1515*time.Millisecond, s.TotalDuration)
	assert.InDelta(t, 0.5, s.PassRate, 1e-9)
	assert.False(t, s.AllSucceeded())

	divides := s.Definitions[1]
	assert.Equal(t, 1, divides.AssertionsPassed)
	assert.Equal(t, 2, divides.AssertionsTotal)
	assert.Equal(t, `Arrangement failed: given "rows": db down`,
		s.Definitions[2].Error)

	empty := BuildSummary(nil)
	assert.Equal(t, 0.0, empty.PassRate)
	assert.True(t, empty.AllSucceeded())
}

func TestSaveSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := BuildSummary(fixtureRuns())
	require.NoError(t, SaveSummary(s, dir))

	data, err := os.ReadFile(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.ID, decoded.ID)

	md, err := os.ReadFile(filepath.Join(dir, "latest_summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| divides | FAILED | 1/2 | 1/2 | 12ms |")
	assert.Contains(t, string(md), "| Could not run | 1 |")
	assert.Contains(t, string(md), "| Pass Rate | 50% |")
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	runs := fixtureRuns()
	for _, run := range runs[:2] {
		require.NoError(t, AppendToHistory(path, run))
	}

	entries, err := LoadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "adds", entries[0].Definition)
	assert.Equal(t, "1.5s", entries[0].Duration)
	assert.Equal(t, 1, entries[1].CasesPassed)
	assert.Equal(t, 2, entries[1].CasesTotal)

	_, err = LoadHistory(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestReporterInterface(t *testing.T) {
	var _ Reporter = NewJSONReporter(false)
	var _ Reporter = NewConsoleReporter(false, false)
}
