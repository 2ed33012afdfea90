package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupetools/dupes/internal/types"
)

// echoFn fingerprints a candidate with its own path, no I/O involved.
func echoFn(_ context.Context, c types.Candidate) (Fingerprint, error) {
	return Fingerprint{Candidate: c, Digest: c.Path}, nil
}

func makeCandidates(n int) []types.Candidate {
	cands := make([]types.Candidate, n)
	for i := range cands {
		cands[i] = types.Candidate{Path: fmt.Sprintf("/virtual/file-%03d", i), Index: i}
	}
	return cands
}

func digestsOf(fps []Fingerprint) []string {
	out := make([]string, len(fps))
	for i, fp := range fps {
		out[i] = fp.Digest
	}
	sort.Strings(out)
	return out
}

func TestPoolResultSetIndependentOfWorkerCount(t *testing.T) {
	cands := makeCandidates(50)

	var want []string
	for _, c := range cands {
		want = append(want, c.Path)
	}
	sort.Strings(want)

	for _, workers := range []int{1, 4, 16} {
		pool := &Pool{Workers: workers, Fn: echoFn, IgnoreErrors: true}
		fps, failures, err := pool.Run(context.Background(), cands)
		require.NoError(t, err, "workers=%d", workers)
		assert.Empty(t, failures)
		assert.Equal(t, want, digestsOf(fps), "workers=%d", workers)
	}
}

func TestPoolTreatsZeroWorkersAsOne(t *testing.T) {
	pool := &Pool{Workers: 0, Fn: echoFn, IgnoreErrors: true}
	fps, _, err := pool.Run(context.Background(), makeCandidates(3))
	require.NoError(t, err)
	assert.Len(t, fps, 3)
}

func TestPoolEmptyInput(t *testing.T) {
	pool := &Pool{Workers: 4, Fn: echoFn, IgnoreErrors: true}
	fps, failures, err := pool.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, fps)
	assert.Empty(t, failures)
}

func TestPoolCollectsFailuresWhenIgnoring(t *testing.T) {
	fn := func(_ context.Context, c types.Candidate) (Fingerprint, error) {
		if strings.Contains(c.Path, "-00") {
			return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, errors.New("boom"))
		}
		return echoFn(context.Background(), c)
	}

	var progressed atomic.Int64
	pool := &Pool{
		Workers:      4,
		Fn:           fn,
		IgnoreErrors: true,
		Progress: func(done, total int) {
			progressed.Add(1)
			assert.Equal(t, 12, total)
		},
	}

	// Paths -000 through -009 fail, 10 of 12.
	fps, failures, err := pool.Run(context.Background(), makeCandidates(12))
	require.NoError(t, err)
	assert.Len(t, fps, 2)
	assert.Len(t, failures, 10)
	for _, ferr := range failures {
		assert.Equal(t, types.ErrRead, ferr.Kind)
	}
	assert.Equal(t, int64(12), progressed.Load(), "progress fires for failures too")
}

func TestPoolStopsOnFirstErrorWhenStrict(t *testing.T) {
	fn := func(_ context.Context, c types.Candidate) (Fingerprint, error) {
		if strings.HasSuffix(c.Path, "-005") {
			return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, errors.New("boom"))
		}
		return echoFn(context.Background(), c)
	}

	pool := &Pool{Workers: 4, Fn: fn, IgnoreErrors: false}
	fps, failures, err := pool.Run(context.Background(), makeCandidates(100))
	require.Error(t, err)

	var ferr *types.FileError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, types.ErrRead, ferr.Kind)
	assert.True(t, strings.HasSuffix(ferr.Path, "-005"))

	assert.Nil(t, fps, "partial results must be discarded on abort")
	assert.Nil(t, failures)
}

func TestPoolHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := func(_ context.Context, c types.Candidate) (Fingerprint, error) {
		time.Sleep(time.Millisecond)
		return echoFn(context.Background(), c)
	}

	pool := &Pool{Workers: 2, Fn: fn, IgnoreErrors: true}
	_, _, err := pool.Run(ctx, makeCandidates(200))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolWrapsPlainErrors(t *testing.T) {
	fn := func(_ context.Context, c types.Candidate) (Fingerprint, error) {
		return Fingerprint{}, errors.New("plain failure")
	}

	pool := &Pool{Workers: 1, Fn: fn, IgnoreErrors: true}
	_, failures, err := pool.Run(context.Background(), makeCandidates(1))
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, types.ErrRead, failures[0].Kind)
	assert.Equal(t, "/virtual/file-000", failures[0].Path)
}
