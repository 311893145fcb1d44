package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.gwt/pkg/result"
)

// Summary aggregates a set of runs.
type Summary struct {
	ID            string              `json:"id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Definitions   []DefinitionSummary `json:"definitions"`
	Total         int                 `json:"total"`
	Passed        int                 `json:"passed"`
	Failed        int                 `json:"failed"`
	Errored       int                 `json:"errored"`
	Empty         int                 `json:"empty"`
	CasesTotal    int                 `json:"cases_total"`
	CasesPassed   int                 `json:"cases_passed"`
	TotalDuration time.Duration       `json:"total_duration"`
	PassRate      float64             `json:"pass_rate"`
}

// DefinitionSummary summarizes one run.
type DefinitionSummary struct {
	Definition       string        `json:"definition"`
	RunID            string        `json:"run_id"`
	Status           string        `json:"status"`
	Duration         time.Duration `json:"duration"`
	CasesPassed      int           `json:"cases_passed"`
	CasesTotal       int           `json:"cases_total"`
	AssertionsPassed int           `json:"assertions_passed"`
	AssertionsTotal  int           `json:"assertions_total"`
	Error            string        `json:"error,omitempty"`
}

// BuildSummary creates a summary from run results. Empty runs
// count toward the pass rate as passed; errored runs as not.
func BuildSummary(runs []*result.Run) *Summary {
	now := time.Now()
	s := &Summary{
		ID:          fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt: now,
		Definitions: make([]DefinitionSummary, 0, len(runs)),
	}

	for _, r := range runs {
		ds := DefinitionSummary{
			Definition: r.Definition,
			RunID:      r.RunID,
			Status:     r.Status,
			Duration:   r.Duration,
			CasesTotal: len(r.Cases),
			Error:      r.Error,
		}
		ds.CasesPassed, _ = r.CaseCounts()
		for _, c := range r.Cases {
			ds.AssertionsTotal += len(c.Assertions)
			for _, a := range c.Assertions {
				if a.Passed {
					ds.AssertionsPassed++
				}
			}
		}

		s.Definitions = append(s.Definitions, ds)
		s.Total++
		s.CasesTotal += ds.CasesTotal
		s.CasesPassed += ds.CasesPassed
		s.TotalDuration += r.Duration

		switch r.Status {
		case result.StatusPassed:
			s.Passed++
		case result.StatusEmpty:
			s.Empty++
		case result.StatusError:
			s.Errored++
		default:
			s.Failed++
		}
	}

	if s.Total > 0 {
		s.PassRate = float64(s.Passed+s.Empty) / float64(s.Total)
	}
	return s
}

// AllSucceeded reports whether no run failed or errored.
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0 && s.Errored == 0
}

// SaveSummary writes the summary as JSON and Markdown into
// outputDir and points latest_summary.* at them.
func SaveSummary(s *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := s.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.json", ts))
	jsonData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.md", ts))
	if err := os.WriteFile(mdPath, []byte(SummaryMarkdown(s)), 0o644); err != nil {
		return fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")
	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// SummaryMarkdown renders the summary as a Markdown document.
func SummaryMarkdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Test Run Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", s.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Definitions\n\n")
	sb.WriteString("| Definition | Status | Cases | Assertions | Duration |\n")
	sb.WriteString("|------------|--------|-------|------------|----------|\n")
	for _, d := range s.Definitions {
		fmt.Fprintf(&sb, "| %s | %s | %d/%d | %d/%d | %v |\n",
			d.Definition, strings.ToUpper(d.Status),
			d.CasesPassed, d.CasesTotal,
			d.AssertionsPassed, d.AssertionsTotal,
			d.Duration,
		)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Definitions | %d |\n", s.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", s.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", s.Failed)
	fmt.Fprintf(&sb, "| Could not run | %d |\n", s.Errored)
	fmt.Fprintf(&sb, "| Empty | %d |\n", s.Empty)
	fmt.Fprintf(&sb, "| Cases | %d/%d |\n", s.CasesPassed, s.CasesTotal)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", s.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", s.TotalDuration)

	return sb.String()
}
