// Package report renders run results as JSON, colored console
// text and Markdown summaries.
package report

import (
	"io"

	"digital.vasic.gwt/pkg/result"
)

// Reporter defines the interface for rendering run results.
type Reporter interface {
	// GenerateReport renders a single run.
	GenerateReport(run *result.Run) ([]byte, error)

	// GenerateSummary renders a summary of all runs.
	GenerateSummary(runs []*result.Run) ([]byte, error)

	// WriteReport writes a single run report to w.
	WriteReport(w io.Writer, run *result.Run) error
}
