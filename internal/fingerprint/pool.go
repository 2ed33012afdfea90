package fingerprint

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dupetools/dupes/internal/types"
)

// Pool runs a fingerprint function over candidates with a fixed number
// of workers pulling from one shared queue. Slow files never starve fast
// ones because nothing is pre-partitioned; each worker takes the next
// unclaimed candidate as soon as it is free.
type Pool struct {
	// Workers is the worker count. Values below 1 are treated as 1.
	Workers int

	// Fn computes each candidate's fingerprint.
	Fn Func

	// IgnoreErrors collects per-file failures and keeps going. When
	// false the first failure cancels the pool and becomes the run's
	// terminal error; in-flight reads finish but their results are
	// discarded.
	IgnoreErrors bool

	// Progress, when set, is called after every processed candidate,
	// successful or not. It is called concurrently from workers and
	// must be safe for that.
	Progress func(done, total int)
}

// Run processes all candidates and returns the fingerprints in completion
// order along with the failures that were ignored. Callers that need a
// stable order sort by candidate index afterwards.
func (p *Pool) Run(ctx context.Context, candidates []types.Candidate) ([]Fingerprint, []*types.FileError, error) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan types.Candidate)

	var mu sync.Mutex
	results := make([]Fingerprint, 0, len(candidates))
	var failures []*types.FileError

	var done atomic.Int64
	total := len(candidates)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, c := range candidates {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for c := range jobs {
				fp, err := p.Fn(ctx, c)
				if err != nil {
					ferr := asFileError(err, c.Path)
					if !p.IgnoreErrors {
						return ferr
					}
					mu.Lock()
					failures = append(failures, ferr)
					mu.Unlock()
				} else {
					mu.Lock()
					results = append(results, fp)
					mu.Unlock()
				}
				if p.Progress != nil {
					p.Progress(int(done.Add(1)), total)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return results, failures, nil
}

// asFileError preserves an existing FileError and wraps anything else as
// a read failure.
func asFileError(err error, path string) *types.FileError {
	var ferr *types.FileError
	if errors.As(err, &ferr) {
		return ferr
	}
	return types.NewFileError(types.ErrRead, path, err)
}
