// Package runner arranges test definitions, acts each case once
// and evaluates its assertions, producing result records. Cases
// run sequentially or in parallel with results kept in case
// order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/logging"
	"digital.vasic.gwt/pkg/metrics"
	"digital.vasic.gwt/pkg/monitor"
	"digital.vasic.gwt/pkg/registry"
	"digital.vasic.gwt/pkg/result"
)

// Runner defines the interface for running test definitions.
type Runner interface {
	// Run arranges and runs one definition.
	Run(ctx context.Context, def *gwt.Definition) (*result.Run, error)

	// RunAll runs every definition in the registry in name
	// order.
	RunAll(
		ctx context.Context,
		reg registry.Registry,
	) ([]*result.Run, error)

	// RunDefinitions runs the given definitions in order.
	RunDefinitions(
		ctx context.Context,
		defs []*gwt.Definition,
	) ([]*result.Run, error)
}

// Hook is invoked before or after a case. It receives the
// definition and the case being run.
type Hook func(
	ctx context.Context,
	def *gwt.Definition,
	c *gwt.Case,
) error

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	config      *config.Config
	logger      logging.Logger
	metrics     metrics.RunMetrics
	collector   *monitor.EventCollector
	parallelism int
	beforeCase  []Hook
	afterCase   []Hook
	newRunID    func() string
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		config:    config.NewConfig("gwt"),
		logger:    logging.NullLogger{},
		metrics:   metrics.NoopMetrics{},
		collector: monitor.NewEventCollector(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collector returns the event collector the runner emits to.
func (r *DefaultRunner) Collector() *monitor.EventCollector {
	return r.collector
}

// RunAll runs every registered definition in name order.
func (r *DefaultRunner) RunAll(
	ctx context.Context,
	reg registry.Registry,
) ([]*result.Run, error) {
	return r.RunDefinitions(ctx, reg.List())
}

// RunDefinitions runs defs in order. Failing or errored runs
// do not stop the sequence; a returned error (misuse of the
// case API or cancellation) does, and the runs completed so far
// are returned with it.
func (r *DefaultRunner) RunDefinitions(
	ctx context.Context,
	defs []*gwt.Definition,
) ([]*result.Run, error) {
	runs := make([]*result.Run, 0, len(defs))
	for _, def := range defs {
		run, err := r.Run(ctx, def)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			return runs, fmt.Errorf(
				"definition %s: %w", def.Name(), err,
			)
		}
	}
	return runs, nil
}

// Run executes one definition: apply overrides -> arrange ->
// act and assert every case -> summarize. An arrangement
// failure yields a run with StatusError and a nil error.
func (r *DefaultRunner) Run(
	ctx context.Context,
	def *gwt.Definition,
) (*result.Run, error) {
	if def == nil {
		return nil, fmt.Errorf("definition must not be nil")
	}

	run := &result.Run{
		RunID:      r.newRunID(),
		Definition: def.Name(),
		Status:     result.StatusRunning,
		StartTime:  time.Now(),
	}
	log := r.logger.WithFields(
		logging.StringField("run_id", run.RunID),
		logging.StringField("definition", def.Name()),
	)

	cfg := r.config.Clone()
	if def.HasOverrides() {
		def.ApplyOverrides(cfg)
		log.Debug("overrides_applied",
			logging.IntField("parallelism", cfg.Parallelism))
	}

	if err := r.arrange(ctx, def, cfg); err != nil {
		var af *gwt.ArrangementFailure
		if !errors.As(err, &af) {
			return nil, err
		}
		run.Status = result.StatusError
		run.Error = af.Error()
		r.finish(run)
		log.Error("arrangement_failed",
			logging.StringField("error", run.Error))
		r.metrics.RecordArrangementFailure(def.Name())
		r.collector.EmitArrangementFailed(
			run.RunID, def.Name(), run.Error,
		)
		r.complete(log, run)
		return run, nil
	}

	cases, err := def.Cases()
	if err != nil {
		return nil, err
	}
	log.Info("definition_arranged",
		logging.IntField("cases", len(cases)))
	r.collector.EmitArranged(run.RunID, def.Name(), len(cases))

	st := &runState{run: run, def: def, log: log}
	parallelism := cfg.Parallelism
	if r.parallelism > 0 {
		parallelism = r.parallelism
	}

	if parallelism > 1 && len(cases) > 1 {
		run.Cases, err = r.runParallel(ctx, st, cases, parallelism)
	} else {
		run.Cases, err = r.runSequential(ctx, st, cases)
	}
	if err != nil {
		r.finish(run)
		return run, err
	}

	run.Status = result.StatusFor(run.Cases)
	r.finish(run)
	r.complete(log, run)
	return run, nil
}

func (r *DefaultRunner) arrange(
	ctx context.Context,
	def *gwt.Definition,
	cfg *config.Config,
) error {
	actx := config.WithConfig(ctx, cfg)
	if cfg.ArrangeTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, cfg.ArrangeTimeout)
		defer cancel()
	}
	return def.Arrange(actx)
}

func (r *DefaultRunner) finish(run *result.Run) {
	run.EndTime = time.Now()
	run.Duration = run.EndTime.Sub(run.StartTime)
}

func (r *DefaultRunner) complete(log logging.Logger, run *result.Run) {
	r.metrics.RecordRun(run.Definition, run.Status, run.Duration)
	r.collector.EmitRunCompleted(
		run.RunID, run.Definition, run.Status, run.Duration,
	)
	passed, failed := run.CaseCounts()
	log.Info("run_completed",
		logging.StringField("status", run.Status),
		logging.IntField("passed", passed),
		logging.IntField("failed", failed),
		logging.DurationField("duration", run.Duration),
	)
}

// runState carries per-run values shared by the case workers.
type runState struct {
	run *result.Run
	def *gwt.Definition
	log logging.Logger
}

func (r *DefaultRunner) runSequential(
	ctx context.Context,
	st *runState,
	cases []*gwt.Case,
) ([]result.Case, error) {
	out := make([]result.Case, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		cr, err := r.runCase(ctx, st, c)
		if err != nil {
			return out, err
		}
		out = append(out, cr)
	}
	return out, nil
}

// runCase acts c once and evaluates every assertion in declared
// order, including those after a failure. A usage error from
// Act or Evaluate is returned and aborts the run.
func (r *DefaultRunner) runCase(
	ctx context.Context,
	st *runState,
	c *gwt.Case,
) (result.Case, error) {
	start := time.Now()
	r.metrics.AddActiveCases(1)
	defer r.metrics.AddActiveCases(-1)

	cr := result.Case{
		Index:       c.Index(),
		Description: c.Describe(),
	}
	r.collector.EmitCaseStarted(
		st.run.RunID, st.def.Name(), cr.Index, cr.Description,
	)

	for _, hook := range r.beforeCase {
		if err := hook(ctx, st.def, c); err != nil {
			cr.Status = result.StatusFailed
			cr.Error = fmt.Sprintf("before hook failed: %v", err)
			cr.Duration = time.Since(start)
			r.caseDone(st, &cr, cr.Error)
			return cr, nil
		}
	}

	if err := c.Act(); err != nil {
		return cr, fmt.Errorf("case %d: %w", cr.Index, err)
	}
	o, _ := c.Outcome()
	cr.Outcome = o.String()
	cr.Threw = o.IsFailure()

	var firstFailure string
	for _, a := range c.Assertions() {
		err := a.Evaluate()
		if gwt.IsUsageError(err) {
			return cr, fmt.Errorf("case %d: %w", cr.Index, err)
		}
		ar := result.Assertion{
			Description: a.Description(),
			Expectation: a.Expectation().String(),
			Passed:      err == nil,
		}
		if err != nil {
			ar.Message = err.Error()
			if firstFailure == "" {
				firstFailure = ar.Message
			}
		}
		cr.Assertions = append(cr.Assertions, ar)
		r.metrics.RecordAssertion(
			st.def.Name(), ar.Expectation, ar.Passed,
		)
	}

	cr.Status = result.StatusPassed
	if !cr.AllPassed() {
		cr.Status = result.StatusFailed
	}

	for _, hook := range r.afterCase {
		if err := hook(ctx, st.def, c); err != nil {
			st.log.Warn("after_hook_warning",
				logging.IntField("case", cr.Index),
				logging.ErrorField(err))
		}
	}

	cr.Duration = time.Since(start)
	r.caseDone(st, &cr, firstFailure)
	return cr, nil
}

func (r *DefaultRunner) caseDone(
	st *runState, cr *result.Case, failure string,
) {
	r.metrics.RecordCase(st.def.Name(), cr.Status, cr.Duration)
	if cr.Status == result.StatusPassed {
		r.collector.EmitCasePassed(
			st.run.RunID, st.def.Name(), cr.Index, cr.Duration,
		)
	} else {
		r.collector.EmitCaseFailed(
			st.run.RunID, st.def.Name(), cr.Index, failure,
		)
	}
	st.log.Debug("case_completed",
		logging.IntField("case", cr.Index),
		logging.StringField("prerequisites", cr.Description),
		logging.StringField("status", cr.Status),
		logging.StringField("outcome", cr.Outcome),
	)
}
