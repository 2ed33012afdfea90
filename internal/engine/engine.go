// Package engine drives one full duplicate-detection run: listing,
// fingerprinting, grouping, keep selection, and deletion.
package engine

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dupetools/dupes/internal/config"
	"github.com/dupetools/dupes/internal/deleter"
	"github.com/dupetools/dupes/internal/fingerprint"
	"github.com/dupetools/dupes/internal/group"
	"github.com/dupetools/dupes/internal/progress"
	"github.com/dupetools/dupes/internal/scan"
	"github.com/dupetools/dupes/internal/types"
)

// Engine wires the pipeline stages together. Listing, grouping, keep
// selection, and deletion are sequential; the fingerprint pool is the
// only concurrent stage.
type Engine struct {
	opts    config.Options
	tracker *progress.Tracker
}

// New returns an engine for opts. tracker may be nil when no live
// progress is wanted.
func New(opts config.Options, tracker *progress.Tracker) *Engine {
	if tracker == nil {
		tracker = progress.New(io.Discard, false)
	}
	return &Engine{opts: opts, tracker: tracker}
}

// Result is the complete outcome of one run.
type Result struct {
	RunID          string
	Root           string
	Groups         []group.Group
	Errors         []*types.FileError
	Deletion       deleter.Summary
	Scanned        int
	SizeCollisions int
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Duration is the wall-clock time of the run.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Run executes the pipeline. With IgnoreErrors set, per-file failures
// are collected on the result; otherwise the first failure aborts the
// run before anything is deleted.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	lister, err := scan.NewLister(e.opts.Path, e.opts.Recursive, e.opts.IgnoreErrors)
	if err != nil {
		return nil, err
	}
	res.Root = lister.Root
	candidates, listErrs, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}
	res.Errors = append(res.Errors, listErrs...)
	res.Scanned = len(candidates)

	var groups []group.Group
	switch e.opts.Mode {
	case types.ModeSimilarity:
		groups, err = e.similarityGroups(ctx, candidates, res)
	default:
		groups, err = e.hashGroups(ctx, candidates, res)
	}
	if err != nil {
		return nil, err
	}

	for i := range groups {
		group.SelectKeeper(&groups[i], e.opts.Keep, e.opts.Order)
	}
	res.Groups = groups

	d := &deleter.Deleter{DryRun: !e.opts.Delete}
	res.Deletion = d.Run(groups)

	res.CompletedAt = time.Now()
	return res, nil
}

// hashGroups finds byte-identical files. Two cheap tiers shrink the
// candidate set before the full-content hash: files with a unique byte
// size cannot have duplicates and are never read, and files whose first
// 64 KiB already differs are split apart before the full pass. Final
// grouping is keyed only by the full digest, so the tiers never change
// the outcome, only the amount of reading.
func (e *Engine) hashGroups(ctx context.Context, candidates []types.Candidate, res *Result) ([]group.Group, error) {
	contenders := sizeContenders(candidates)

	quick, err := e.runPool(ctx, "quick scan", fingerprint.QuickHash, contenders, res)
	if err != nil {
		return nil, err
	}
	survivors, quickUnique := quickSurvivors(quick)
	res.SizeCollisions += quickUnique

	full, err := e.runPool(ctx, "hashing", fingerprint.SHA256File, survivors, res)
	if err != nil {
		return nil, err
	}

	groups, unique := group.ByDigest(full)
	res.SizeCollisions += unique
	return groups, nil
}

// similarityGroups finds visually similar images via perceptual hashes.
func (e *Engine) similarityGroups(ctx context.Context, candidates []types.Candidate, res *Result) ([]group.Group, error) {
	fps, err := e.runPool(ctx, "hashing images", fingerprint.ImageHash, candidates, res)
	if err != nil {
		return nil, err
	}
	return group.BySimilarity(fps, e.opts.SimilarityScore)
}

func (e *Engine) runPool(ctx context.Context, label string, fn fingerprint.Func, candidates []types.Candidate, res *Result) ([]fingerprint.Fingerprint, error) {
	e.tracker.StartPhase(label, len(candidates))
	defer e.tracker.Finish()

	pool := &fingerprint.Pool{
		Workers:      e.opts.Threads,
		Fn:           fn,
		IgnoreErrors: e.opts.IgnoreErrors,
		Progress:     e.tracker.Update,
	}
	fps, ferrs, err := pool.Run(ctx, candidates)
	if err != nil {
		return nil, err
	}
	res.Errors = append(res.Errors, ferrs...)
	return fps, nil
}

// sizeContenders keeps only files whose byte size appears more than
// once, in listing order.
func sizeContenders(candidates []types.Candidate) []types.Candidate {
	counts := make(map[int64]int, len(candidates))
	for _, c := range candidates {
		counts[c.Size]++
	}
	var contenders []types.Candidate
	for _, c := range candidates {
		if counts[c.Size] > 1 {
			contenders = append(contenders, c)
		}
	}
	return contenders
}

// quickSurvivors keeps files sharing both size and prefix hash with at
// least one other file, and counts the ones that proved unique.
func quickSurvivors(fps []fingerprint.Fingerprint) ([]types.Candidate, int) {
	type key struct {
		size   int64
		digest string
	}
	buckets := make(map[key][]types.Candidate, len(fps))
	for _, fp := range fps {
		k := key{size: fp.Candidate.Size, digest: fp.Digest}
		buckets[k] = append(buckets[k], fp.Candidate)
	}

	var survivors []types.Candidate
	unique := 0
	for _, members := range buckets {
		if len(members) < 2 {
			unique += len(members)
			continue
		}
		survivors = append(survivors, members...)
	}
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].Index < survivors[j].Index })
	return survivors, unique
}
