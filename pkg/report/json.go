package report

import (
	"encoding/json"
	"io"

	"digital.vasic.gwt/pkg/result"
)

// JSONReporter generates JSON reports from run results.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// GenerateReport creates a JSON report for a single run.
func (r *JSONReporter) GenerateReport(run *result.Run) ([]byte, error) {
	return r.marshal(run)
}

// jsonSummary is the JSON structure for a run summary.
type jsonSummary struct {
	*Summary
	Runs []*result.Run `json:"runs"`
}

// GenerateSummary creates a JSON summary embedding every run.
func (r *JSONReporter) GenerateSummary(runs []*result.Run) ([]byte, error) {
	return r.marshal(jsonSummary{
		Summary: BuildSummary(runs),
		Runs:    runs,
	})
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(w io.Writer, run *result.Run) error {
	data, err := r.GenerateReport(run)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
