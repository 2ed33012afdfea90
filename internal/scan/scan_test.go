package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupetools/dupes/internal/types"
)

// writeFile creates a file with content under dir, creating parents.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewListerValidatesRoot(t *testing.T) {
	_, err := NewLister(filepath.Join(t.TempDir(), "missing"), true, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	file := writeFile(t, t.TempDir(), "plain.txt", "x")
	_, err = NewLister(file, true, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestListRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")
	writeFile(t, root, "b.txt", "beta")
	writeFile(t, root, "sub/c.txt", "gamma")
	writeFile(t, root, "sub/deep/d.txt", "delta")

	lister, err := NewLister(root, true, true)
	require.NoError(t, err)

	candidates, skipped, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, candidates, 4)

	var names []string
	for i, c := range candidates {
		assert.Equal(t, i, c.Index, "indices must follow listing order")
		assert.False(t, c.ModTime.IsZero())
		assert.False(t, c.CreatedAt.IsZero())
		rel, err := filepath.Rel(root, c.Path)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	// filepath.Walk visits entries in lexical order.
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt", "sub/deep/d.txt"}, names)

	assert.Equal(t, int64(len("alpha")), candidates[0].Size)
}

func TestListNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")
	writeFile(t, root, "sub/c.txt", "gamma")

	lister, err := NewLister(root, false, true)
	require.NoError(t, err)

	candidates, skipped, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a.txt", filepath.Base(candidates[0].Path))
}

func TestListSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}

	root := t.TempDir()
	target := writeFile(t, root, "real.txt", "content")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "linkdir")))

	lister, err := NewLister(root, true, true)
	require.NoError(t, err)

	candidates, skipped, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, candidates, 1)
	assert.Equal(t, "real.txt", filepath.Base(candidates[0].Path))
}

func TestListUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	root := t.TempDir()
	writeFile(t, root, "open.txt", "readable")
	writeFile(t, root, "locked/hidden.txt", "unreachable")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	lister, err := NewLister(root, true, true)
	require.NoError(t, err)

	candidates, skipped, err := lister.List(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "open.txt", filepath.Base(candidates[0].Path))
	require.Len(t, skipped, 1)
	assert.Equal(t, types.ErrListing, skipped[0].Kind)
	assert.Equal(t, locked, skipped[0].Path)

	strict, err := NewLister(root, true, false)
	require.NoError(t, err)

	_, _, err = strict.List(context.Background())
	var ferr *types.FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, types.ErrListing, ferr.Kind)
	assert.Equal(t, locked, ferr.Path)
}

func TestListNonRecursiveStatFailures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")

	// Readable but not searchable: names list fine, their metadata does not.
	require.NoError(t, os.Chmod(root, 0o644))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	lister, err := NewLister(root, false, true)
	require.NoError(t, err)

	candidates, skipped, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
	require.Len(t, skipped, 1)
	assert.Equal(t, types.ErrListing, skipped[0].Kind)

	strict, err := NewLister(root, false, false)
	require.NoError(t, err)

	_, _, err = strict.List(context.Background())
	var ferr *types.FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, types.ErrListing, ferr.Kind)
}

func TestListHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister, err := NewLister(root, true, true)
	require.NoError(t, err)

	_, _, err = lister.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
