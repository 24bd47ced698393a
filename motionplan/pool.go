package motionplan

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/motionvalidity/logging"
	"go.viam.com/motionvalidity/referenceframe"
	"go.viam.com/motionvalidity/utils"
)

// CheckerPool evaluates batches of states on several workers. Each worker owns a Checker built over its own clone
// of the scene graph, so only immutable geometry is shared between goroutines.
type CheckerPool struct {
	logger   logging.Logger
	checkers []*Checker
	graphs   []*referenceframe.Graph
}

// NewCheckerPool builds one checker per worker. A non-positive worker count uses utils.ParallelFactor.
func NewCheckerPool(
	ctx context.Context,
	logger logging.Logger,
	scene *referenceframe.Graph,
	bounds BoundsChecker,
	cfg CheckerConfig,
	workers int,
	opts ...CheckerOption,
) (*CheckerPool, error) {
	_, span := trace.StartSpan(ctx, "motionplan::NewCheckerPool")
	defer span.End()

	if workers <= 0 {
		workers = utils.ParallelFactor
	}
	logger = logger.With("scene", scene.Name())
	pool := &CheckerPool{logger: logger}
	for i := 0; i < workers; i++ {
		graph := scene.Clone()
		checkerOpts := append([]CheckerOption{WithName(fmt.Sprintf("worker-%d", i))}, opts...)
		checker, err := NewChecker(logger, graph, bounds, cfg, checkerOpts...)
		if err != nil {
			return nil, multierr.Combine(errors.Wrapf(err, "worker %d", i), pool.Close())
		}
		pool.graphs = append(pool.graphs, graph)
		pool.checkers = append(pool.checkers, checker)
	}
	logger.Debugw("checker pool ready", "workers", workers)
	return pool, nil
}

// Size returns the number of workers.
func (p *CheckerPool) Size() int {
	return len(p.checkers)
}

// Checker returns the checker of worker i.
func (p *CheckerPool) Checker(i int) *Checker {
	return p.checkers[i]
}

// ValidStates decides every state and returns the decisions in input order. Cancellation is honored between states.
// States must not carry their own scene graph since workers would share it.
func (p *CheckerPool) ValidStates(ctx context.Context, states []*State) ([]bool, error) {
	ctx, span := trace.StartSpan(ctx, "motionplan::CheckerPool::ValidStates")
	defer span.End()

	for i, s := range states {
		if s != nil && s.Scene != nil {
			return nil, NewSharedSceneError(i)
		}
	}

	results := make([]bool, len(states))
	var next atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, checker := range p.checkers {
		checker := checker
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("%s: %v", checker.Name(), r)
				}
			}()
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := int(next.Inc()) - 1
				if i >= len(states) {
					return nil
				}
				results[i] = checker.IsValid(states[i])
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stats reconciles the counters of every worker. Counters shared through WithCounters are only counted once.
func (p *CheckerPool) Stats() Stats {
	counters := lo.Uniq(lo.Map(p.checkers, func(c *Checker, _ int) *Counters { return c.counters }))
	return lo.Reduce(counters, func(acc Stats, c *Counters, _ int) Stats {
		return acc.Add(c.Stats())
	}, Stats{})
}

// Close closes every worker.
func (p *CheckerPool) Close() error {
	var errs error
	for _, c := range p.checkers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}
