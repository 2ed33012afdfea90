package deleter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupetools/dupes/internal/group"
	"github.com/dupetools/dupes/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) types.Candidate {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return types.Candidate{Path: path, Size: int64(len(content))}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "same")
	b := writeFile(t, dir, "b.txt", "same")
	c := writeFile(t, dir, "c.txt", "same")

	groups := []group.Group{{Members: []types.Candidate{a, b, c}, Keep: 0}}

	d := &Deleter{DryRun: true}
	summary := d.Run(groups)

	assert.True(t, summary.DryRun)
	assert.Len(t, summary.Deleted, 2)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, int64(8), summary.Freed, "reclaimable bytes are still computed")

	for _, cand := range []types.Candidate{a, b, c} {
		assert.True(t, exists(cand.Path), "%s must survive a dry run", cand.Path)
	}
}

func TestDeleteKeepsExactlyTheKeeper(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "same")
	b := writeFile(t, dir, "b.txt", "same")
	c := writeFile(t, dir, "c.txt", "same")

	groups := []group.Group{{Members: []types.Candidate{a, b, c}, Keep: 1}}

	d := &Deleter{}
	summary := d.Run(groups)

	assert.Len(t, summary.Deleted, 2)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, int64(8), summary.Freed)

	assert.False(t, exists(a.Path))
	assert.True(t, exists(b.Path), "the kept member must survive")
	assert.False(t, exists(c.Path))
}

func TestFailureDoesNotBlockTheBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one")
	ghost := writeFile(t, dir, "ghost.txt", "one")
	b := writeFile(t, dir, "b.txt", "two")
	bCopy := writeFile(t, dir, "b_copy.txt", "two")

	// Make ghost's deletion fail by removing it up front.
	require.NoError(t, os.Remove(ghost.Path))

	groups := []group.Group{
		{Members: []types.Candidate{a, ghost}, Keep: 0},
		{Members: []types.Candidate{b, bCopy}, Keep: 0},
	}

	d := &Deleter{}
	summary := d.Run(groups)

	require.Len(t, summary.Failed, 1)
	assert.Equal(t, ghost.Path, summary.Failed[0].Path)
	require.NotNil(t, summary.Failed[0].Err)
	assert.Equal(t, types.ErrDelete, summary.Failed[0].Err.Kind)

	// The second group was still processed.
	require.Len(t, summary.Deleted, 1)
	assert.Equal(t, bCopy.Path, summary.Deleted[0].Path)
	assert.False(t, exists(bCopy.Path))
	assert.True(t, exists(b.Path))

	// Failed bytes are not counted as freed.
	assert.Equal(t, bCopy.Size, summary.Freed)
}

func TestEmptyGroups(t *testing.T) {
	d := &Deleter{}
	summary := d.Run(nil)
	assert.Empty(t, summary.Deleted)
	assert.Empty(t, summary.Failed)
	assert.Zero(t, summary.Freed)
}
