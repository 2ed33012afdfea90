// Package scan lists the regular files under a root directory and turns
// them into fingerprint candidates.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"

	"github.com/dupetools/dupes/internal/types"
)

// Lister enumerates candidates under Root.
type Lister struct {
	// Root is the directory to scan.
	Root string

	// Recursive controls whether subdirectories are traversed. When
	// false only direct children of Root are considered.
	Recursive bool

	// IgnoreErrors keeps the listing alive through unreadable entries.
	// When false the first unreadable entry stops the listing.
	IgnoreErrors bool
}

// NewLister validates the root path and returns a Lister.
func NewLister(root string, recursive, ignoreErrors bool) (*Lister, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("root path does not exist: %s", absRoot)
		}
		return nil, fmt.Errorf("checking root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	return &Lister{Root: absRoot, Recursive: recursive, IgnoreErrors: ignoreErrors}, nil
}

// List walks the tree and returns the candidates in listing order, each
// tagged with its position, plus any per-entry errors that were skipped.
// With IgnoreErrors disabled the first per-entry failure is returned as
// the error instead, and no candidates are produced. Directories and
// symlinks never become candidates and are not errors.
func (l *Lister) List(ctx context.Context) ([]types.Candidate, []*types.FileError, error) {
	if l.Recursive {
		return l.walk(ctx)
	}
	return l.readDir(ctx)
}

func (l *Lister) walk(ctx context.Context) ([]types.Candidate, []*types.FileError, error) {
	var candidates []types.Candidate
	var skipped []*types.FileError

	err := filepath.Walk(l.Root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == l.Root {
				// The root itself is unreadable; nothing to scan.
				return fmt.Errorf("reading root directory: %w", err)
			}
			ferr := types.NewFileError(types.ErrListing, path, err)
			if !l.IgnoreErrors {
				return ferr
			}
			skipped = append(skipped, ferr)
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		candidates = append(candidates, l.candidate(path, info, len(candidates)))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return candidates, skipped, nil
}

func (l *Lister) readDir(ctx context.Context) ([]types.Candidate, []*types.FileError, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("reading root directory: %w", err)
	}

	var candidates []types.Candidate
	var skipped []*types.FileError

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if !entry.Type().IsRegular() {
			continue
		}

		path := filepath.Join(l.Root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			ferr := types.NewFileError(types.ErrListing, path, err)
			if !l.IgnoreErrors {
				return nil, nil, ferr
			}
			skipped = append(skipped, ferr)
			continue
		}

		candidates = append(candidates, l.candidate(path, info, len(candidates)))
	}

	return candidates, skipped, nil
}

func (l *Lister) candidate(path string, info os.FileInfo, index int) types.Candidate {
	return types.Candidate{
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		CreatedAt: createdAt(info),
		Index:     index,
	}
}

// createdAt returns the best available creation timestamp. Not every
// filesystem records a birth time; fall back to change time, then mtime.
func createdAt(info os.FileInfo) time.Time {
	ts := times.Get(info)
	switch {
	case ts.HasBirthTime():
		return ts.BirthTime()
	case ts.HasChangeTime():
		return ts.ChangeTime()
	default:
		return info.ModTime()
	}
}
