package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"digital.vasic.gwt/internal/demo"
	"digital.vasic.gwt/pkg/logging"
	"digital.vasic.gwt/pkg/metrics"
	"digital.vasic.gwt/pkg/monitor"
	"digital.vasic.gwt/pkg/report"
	"digital.vasic.gwt/pkg/runner"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Parallel       int
	Filter         string
	Monitor        string
	Progress       bool
	Save           bool
	IncludeFailing bool
	Color          bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Arrange and run the example definitions",
		Long: `Arrange and run the example definitions.

Exit codes:
  0 - every definition passed or arranged no cases
  1 - a definition failed or could not run
  2 - command error

Examples:
  gwt-demo run
  gwt-demo run --filter "strings/*" --parallel 4
  gwt-demo run --include-failing --format json
  gwt-demo run --monitor 127.0.0.1:8089`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDefinitions(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Parallel, "parallel", 0, "cases run at once (0 uses the config)")
	f.StringVar(&opts.Filter, "filter", "", "filter definitions by glob pattern")
	f.StringVar(&opts.Monitor, "monitor", "", "serve live events and metrics on this address")
	f.BoolVar(&opts.Progress, "progress", false, "show a progress bar")
	f.BoolVar(&opts.Save, "save", false, "write a summary and history to the results directory")
	f.BoolVar(&opts.IncludeFailing, "include-failing", false, "include intentionally failing examples")
	f.BoolVar(&opts.Color, "color", true, "colored console output")

	return cmd
}

func runDefinitions(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger

	defs, err := demo.Catalog(opts.IncludeFailing).Match(opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "filter", err)
	}

	collector := monitor.NewEventCollector()
	m := metrics.NewPrometheusMetrics()

	if opts.Monitor != "" {
		hub := monitor.NewHub(collector, monitor.NewDashboardData(opts.Config.Name),
			monitor.WithHubLogger(log),
			monitor.WithHandler("/metrics", m.Handler()),
		)
		serveCtx, stop := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := hub.Start(serveCtx, opts.Monitor); err != nil {
				log.Error("monitor_failed", logging.ErrorField(err))
			}
		}()
		defer func() {
			stop()
			<-done
		}()
		log.Info("monitor_listening",
			logging.StringField("addr", opts.Monitor))
	}

	if opts.Progress {
		p := newCaseProgress(cmd.ErrOrStderr())
		collector.OnEvent(p.observe)
		defer p.finish()
	}

	r := runner.NewRunner(
		runner.WithConfig(opts.Config),
		runner.WithLogger(log),
		runner.WithMetrics(m),
		runner.WithCollector(collector),
		runner.WithParallelism(opts.Parallel),
	)
	runs, runErr := r.RunDefinitions(ctx, defs)

	var reporter report.Reporter = report.NewConsoleReporter(
		opts.Color, opts.Verbose || opts.Config.Verbose,
	)
	if opts.Format == "json" {
		reporter = report.NewJSONReporter(true)
	}
	out := cmd.OutOrStdout()
	if opts.Format == "console" {
		for _, run := range runs {
			if err := reporter.WriteReport(out, run); err != nil {
				return err
			}
		}
	}
	summary, err := reporter.GenerateSummary(runs)
	if err != nil {
		return err
	}
	if _, err := out.Write(summary); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitCommandError, "run aborted", runErr)
	}

	s := report.BuildSummary(runs)
	if opts.Save {
		dir := opts.Config.ResultsDir
		if err := report.SaveSummary(s, dir); err != nil {
			return WrapExitError(ExitCommandError, "save summary", err)
		}
		history := filepath.Join(dir, "history.jsonl")
		for _, run := range runs {
			if err := report.AppendToHistory(history, run); err != nil {
				return WrapExitError(ExitCommandError, "append history", err)
			}
		}
	}

	if !s.AllSucceeded() {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"%d failed, %d could not run", s.Failed, s.Errored,
		))
	}
	return nil
}
