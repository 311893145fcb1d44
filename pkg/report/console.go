package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"digital.vasic.gwt/pkg/result"
)

// ConsoleReporter renders runs as colored terminal text. Non
// verbose output lists only failing cases.
type ConsoleReporter struct {
	verbose bool
	pass    *color.Color
	fail    *color.Color
	errored *color.Color
	muted   *color.Color
	header  *color.Color
}

// NewConsoleReporter creates a console reporter. When useColor
// is false no escape sequences are written.
func NewConsoleReporter(useColor, verbose bool) *ConsoleReporter {
	r := &ConsoleReporter{
		verbose: verbose,
		pass:    color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		errored: color.New(color.FgYellow, color.Bold),
		muted:   color.New(color.Faint),
		header:  color.New(color.FgCyan, color.Bold),
	}
	if !useColor {
		for _, c := range []*color.Color{
			r.pass, r.fail, r.errored, r.muted, r.header,
		} {
			c.DisableColor()
		}
	}
	return r
}

// GenerateReport renders a single run.
func (r *ConsoleReporter) GenerateReport(run *result.Run) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes a single run to w.
func (r *ConsoleReporter) WriteReport(w io.Writer, run *result.Run) error {
	var sb strings.Builder
	sb.WriteString(r.header.Sprintf("=== %s", run.Definition))
	sb.WriteString(r.muted.Sprintf(" (%s)", run.RunID))
	sb.WriteString("\n")

	for _, c := range run.Cases {
		if !r.verbose && c.Status == result.StatusPassed {
			continue
		}
		r.writeCase(&sb, c)
	}

	passed, failed := run.CaseCounts()
	dur := run.Duration.Round(time.Millisecond)
	switch run.Status {
	case result.StatusError:
		sb.WriteString(r.errored.Sprint("--- ERROR"))
		fmt.Fprintf(&sb, " %s: could not run: %s (%v)\n",
			run.Definition, run.Error, dur)
	case result.StatusEmpty:
		sb.WriteString(r.muted.Sprint("--- EMPTY"))
		fmt.Fprintf(&sb, " %s: no cases (%v)\n", run.Definition, dur)
	case result.StatusPassed:
		sb.WriteString(r.pass.Sprint("--- PASS"))
		fmt.Fprintf(&sb, " %s: %d passed (%v)\n",
			run.Definition, passed, dur)
	default:
		sb.WriteString(r.fail.Sprint("--- FAIL"))
		fmt.Fprintf(&sb, " %s: %d passed, %d failed (%v)\n",
			run.Definition, passed, failed, dur)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *ConsoleReporter) writeCase(sb *strings.Builder, c result.Case) {
	label := r.pass.Sprint("PASS")
	if c.Status != result.StatusPassed {
		label = r.fail.Sprint("FAIL")
	}
	fmt.Fprintf(sb, "  %s #%d %s", label, c.Index, c.Description)
	if c.Outcome != "" {
		sb.WriteString(r.muted.Sprintf(" -> %s", c.Outcome))
	}
	sb.WriteString("\n")

	if c.Error != "" {
		fmt.Fprintf(sb, "       %s %s\n", r.fail.Sprint("!"), c.Error)
	}
	for _, a := range c.Assertions {
		switch {
		case !a.Passed:
			fmt.Fprintf(sb, "       %s %s: %s\n",
				r.fail.Sprint("x"), a.Description, a.Message)
		case r.verbose:
			fmt.Fprintf(sb, "       %s %s\n",
				r.pass.Sprint("v"), a.Description)
		}
	}
}

// GenerateSummary renders the aggregate counts of runs.
func (r *ConsoleReporter) GenerateSummary(runs []*result.Run) ([]byte, error) {
	s := BuildSummary(runs)
	var sb strings.Builder

	sb.WriteString(r.header.Sprint("Summary"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  definitions: %d  %s  %s  %s  %s\n",
		s.Total,
		r.pass.Sprintf("passed: %d", s.Passed),
		r.fail.Sprintf("failed: %d", s.Failed),
		r.errored.Sprintf("could not run: %d", s.Errored),
		r.muted.Sprintf("empty: %d", s.Empty),
	)
	fmt.Fprintf(&sb, "  cases: %d/%d passed\n", s.CasesPassed, s.CasesTotal)
	fmt.Fprintf(&sb, "  duration: %v\n", s.TotalDuration.Round(time.Millisecond))
	if s.AllSucceeded() {
		sb.WriteString(r.pass.Sprint("OK"))
	} else {
		sb.WriteString(r.fail.Sprint("FAILED"))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}
