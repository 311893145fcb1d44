package cli

import (
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"digital.vasic.gwt/pkg/monitor"
)

// caseProgress drives a progress bar from runner events. The
// total grows as each definition is arranged.
type caseProgress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	total  int
	passed int
	failed int
}

func newCaseProgress(w io.Writer) *caseProgress {
	bar := progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
	return &caseProgress{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// observe is registered with the event collector.
func (p *caseProgress) observe(e monitor.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Type {
	case monitor.EventArranged:
		if e.Cases > 0 {
			p.total += e.Cases
			p.bar.ChangeMax(p.total)
		}
	case monitor.EventCasePassed:
		p.passed++
	case monitor.EventCaseFailed:
		p.failed++
	default:
		return
	}
	p.bar.Describe(describe(p.passed, p.failed))
	_ = p.bar.Set(p.passed + p.failed)
}

func (p *caseProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
