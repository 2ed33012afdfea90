// Package deleter removes the non-kept members of duplicate groups.
package deleter

import (
	"os"

	"github.com/dupetools/dupes/internal/group"
	"github.com/dupetools/dupes/internal/types"
)

// Outcome is the result of one deletion attempt.
type Outcome struct {
	Path string
	Size int64

	// Err is nil on success (and always nil in a dry run).
	Err *types.FileError
}

// Summary collects the attempt outcomes for a whole run.
type Summary struct {
	// Deleted lists files that were removed, or would be in a dry run.
	Deleted []Outcome

	// Failed lists files the filesystem refused to remove.
	Failed []Outcome

	// Freed is the byte total of Deleted: space actually reclaimed, or
	// reclaimable when DryRun is set.
	Freed int64

	DryRun bool
}

// Deleter walks duplicate groups and removes every member except the
// kept one. Failures never stop the batch: each file is an independent
// attempt, recorded and moved past, so one stubborn file cannot block
// later groups or undo earlier removals.
type Deleter struct {
	// DryRun accounts for every deletion without touching the disk.
	DryRun bool
}

// Run deletes the duplicates of each group in order and reports what
// happened, file by file.
func (d *Deleter) Run(groups []group.Group) Summary {
	summary := Summary{DryRun: d.DryRun}

	for _, g := range groups {
		for _, dup := range g.Duplicates() {
			outcome := Outcome{Path: dup.Path, Size: dup.Size}

			if !d.DryRun {
				if err := os.Remove(dup.Path); err != nil {
					outcome.Err = types.NewFileError(types.ErrDelete, dup.Path, err)
					summary.Failed = append(summary.Failed, outcome)
					continue
				}
			}

			summary.Deleted = append(summary.Deleted, outcome)
			summary.Freed += dup.Size
		}
	}

	return summary
}
