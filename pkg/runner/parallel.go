package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/result"
)

// runParallel runs cases on at most limit goroutines. Each case
// writes its own slot, so results come back in case order. The
// first usage error or cancellation stops cases not yet started;
// only finished slots are returned.
func (r *DefaultRunner) runParallel(
	ctx context.Context,
	st *runState,
	cases []*gwt.Case,
	limit int,
) ([]result.Case, error) {
	slots := make([]result.Case, len(cases))
	done := make([]bool, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cr, err := r.runCase(gctx, st, c)
			slots[i] = cr
			done[i] = err == nil
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		return slots, nil
	}

	out := make([]result.Case, 0, len(cases))
	for i, ok := range done {
		if ok {
			out = append(out, slots[i])
		}
	}
	return out, err
}
