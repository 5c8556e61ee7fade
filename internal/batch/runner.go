package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kinetree/internal/ik"
	"github.com/san-kum/kinetree/internal/kinematics"
)

// Factory returns a chain that belongs to the calling worker alone, posed
// at the start configuration every job begins from. The runner releases it.
type Factory func() (*kinematics.Chain, error)

// Outcome pairs a job with its solve. Err holds the solver error, which for
// an unreachable target wraps ik.ErrNotConverged.
type Outcome struct {
	Job
	Result *ik.Result
	Err    error
}

type Runner struct {
	factory Factory
	cfg     ik.Config
	workers int
	logger  *slog.Logger
}

type Option func(*Runner)

// WithWorkers caps the number of concurrent chains. Values below one mean
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(factory Factory, cfg ik.Config, opts ...Option) *Runner {
	r := &Runner{
		factory: factory,
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Run solves every job and returns outcomes in job order. Solver failures
// are reported per outcome; Run itself fails only on an invalid config, a
// factory error or cancellation.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]Outcome, len(jobs))
	workers := min(r.workers, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			return r.work(ctx, w, workers, jobs, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// work handles jobs w, w+stride, w+2*stride... on a private chain.
func (r *Runner) work(ctx context.Context, w, stride int, jobs []Job, out []Outcome) error {
	chain, err := r.factory()
	if err != nil {
		return fmt.Errorf("batch: worker %d: %w", w, err)
	}
	defer chain.Release()

	solver, err := ik.New(r.cfg, ik.WithLogger(r.logger.With("worker", w)))
	if err != nil {
		return err
	}
	start := chain.JointAngles()

	for i := w; i < len(jobs); i += stride {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := chain.SetJointAngles(start); err != nil {
			return err
		}
		res, err := solver.Solve(chain, jobs[i].Target)
		if err != nil && !ik.IsNotConverged(err) {
			return fmt.Errorf("batch: job %d: %w", jobs[i].Index, err)
		}
		out[i] = Outcome{Job: jobs[i], Result: res, Err: err}
	}
	return nil
}
