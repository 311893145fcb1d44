package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"digital.vasic.gwt/pkg/result"
)

// HistoricalEntry is one run in the JSON-lines history log.
type HistoricalEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	Definition  string    `json:"definition"`
	Status      string    `json:"status"`
	Duration    string    `json:"duration"`
	CasesPassed int       `json:"cases_passed"`
	CasesTotal  int       `json:"cases_total"`
}

// AppendToHistory adds an entry for run to the history log at
// historyPath, creating the file and its directory if needed.
func AppendToHistory(historyPath string, run *result.Run) error {
	passed, _ := run.CaseCounts()
	entry := HistoricalEntry{
		Timestamp:   run.EndTime,
		RunID:       run.RunID,
		Definition:  run.Definition,
		Status:      run.Status,
		Duration:    run.Duration.String(),
		CasesPassed: passed,
		CasesTotal:  len(run.Cases),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(
		historyPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
	)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	return nil
}

// LoadHistory reads every entry from the history log.
func LoadHistory(historyPath string) ([]HistoricalEntry, error) {
	f, err := os.Open(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e HistoricalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("failed to parse history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
