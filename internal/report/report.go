// Package report aggregates the outcome of a run and renders the
// console output.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/dupetools/dupes/internal/deleter"
	"github.com/dupetools/dupes/internal/group"
	"github.com/dupetools/dupes/internal/types"
)

// Input carries everything the builder needs from a finished run.
type Input struct {
	RunID          string
	Root           string
	Mode           types.Mode
	DryRun         bool
	Scanned        int
	SizeCollisions int
	Groups         []group.Group
	Errors         []*types.FileError
	Deletion       deleter.Summary
	Duration       time.Duration
}

// Summary is the read-only aggregate of one run.
type Summary struct {
	RunID          string
	Root           string
	Mode           types.Mode
	DryRun         bool
	Scanned        int
	Groups         int
	Duplicates     int
	Reclaimable    int64
	SizeCollisions int
	Errors         map[types.ErrorKind]int
	Deleted        int
	DeleteFailed   int
	FailedOutcomes []deleter.Outcome
	Freed          int64
	Duration       time.Duration
}

// Build folds the run's groups, errors, and deletion outcomes into a
// Summary.
func Build(in Input) Summary {
	sum := Summary{
		RunID:          in.RunID,
		Root:           in.Root,
		Mode:           in.Mode,
		DryRun:         in.DryRun,
		Scanned:        in.Scanned,
		Groups:         len(in.Groups),
		SizeCollisions: in.SizeCollisions,
		Errors:         make(map[types.ErrorKind]int),
		Deleted:        len(in.Deletion.Deleted),
		DeleteFailed:   len(in.Deletion.Failed),
		FailedOutcomes: in.Deletion.Failed,
		Freed:          in.Deletion.Freed,
		Duration:       in.Duration,
	}
	for _, g := range in.Groups {
		dups := g.Duplicates()
		sum.Duplicates += len(dups)
		for _, d := range dups {
			sum.Reclaimable += d.Size
		}
	}
	for _, ferr := range in.Errors {
		sum.Errors[ferr.Kind]++
	}
	if n := len(in.Deletion.Failed); n > 0 {
		sum.Errors[types.ErrDelete] += n
	}
	return sum
}

// Renderer prints groups and the summary block. Quiet suppresses all
// output; ShowSummary=false drops only the trailing summary.
type Renderer struct {
	W           io.Writer
	Root        string
	SortBy      types.OrderBy
	ShowSummary bool
	Quiet       bool
}

// Render writes the duplicate listing followed by the summary block.
// Groups are displayed in detection order unless SortBy is set.
func (r Renderer) Render(groups []group.Group, sum Summary) {
	if r.Quiet {
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if sum.DryRun && len(groups) > 0 {
		fmt.Fprintf(r.W, "%s\n", color.YellowString("DRY RUN MODE - No files will be deleted"))
	}

	if len(groups) == 0 {
		fmt.Fprintf(r.W, "No duplicates found in %s\n", r.Root)
	} else {
		display := make([]group.Group, len(groups))
		copy(display, groups)
		if r.SortBy != "" {
			group.SortGroups(display, r.SortBy)
		}

		fmt.Fprintf(r.W, "\n%s\n", cyan(fmt.Sprintf("=== Duplicates in %s ===", r.Root)))
		for i, g := range display {
			fmt.Fprintf(r.W, "\nGroup %d %s\n", i+1, gray(fmt.Sprintf("(%d files)", len(g.Members))))
			for j, m := range g.Members {
				mark := " "
				if j == g.Keep || (g.Keep < 0 && j == 0) {
					mark = green("✓")
				}
				fmt.Fprintf(r.W, "  %s %s %s\n", mark, r.shorten(m.Path), gray(humanize.IBytes(uint64(m.Size))))
			}
		}
	}

	for _, out := range sum.FailedOutcomes {
		fmt.Fprintf(r.W, "%s failed to delete %s: %v\n", red("✗"), r.shorten(out.Path), out.Err)
	}

	if !r.ShowSummary {
		return
	}

	fmt.Fprintf(r.W, "\n%s\n", cyan("=== Summary ==="))
	fmt.Fprintf(r.W, "  Files scanned:    %s\n", humanize.Comma(int64(sum.Scanned)))
	fmt.Fprintf(r.W, "  Duplicate groups: %s\n", humanize.Comma(int64(sum.Groups)))
	fmt.Fprintf(r.W, "  Duplicate files:  %s\n", humanize.Comma(int64(sum.Duplicates)))
	if sum.Mode == types.ModeHash {
		fmt.Fprintf(r.W, "  Size collisions:  %s\n", humanize.Comma(int64(sum.SizeCollisions)))
	}
	fmt.Fprintf(r.W, "  Space reclaimable: %s\n", humanize.IBytes(uint64(sum.Reclaimable)))

	switch {
	case sum.DryRun && sum.Duplicates > 0:
		fmt.Fprintf(r.W, "  Would delete %s file(s)\n", humanize.Comma(int64(sum.Duplicates)))
		fmt.Fprintf(r.W, "  Run with --delete to remove them\n")
	case !sum.DryRun:
		fmt.Fprintf(r.W, "%s Deleted %s file(s), freed %s\n",
			green("✓"), humanize.Comma(int64(sum.Deleted)), humanize.IBytes(uint64(sum.Freed)))
		if sum.DeleteFailed > 0 {
			fmt.Fprintf(r.W, "%s %s deletion(s) failed\n", red("✗"), humanize.Comma(int64(sum.DeleteFailed)))
		}
	}

	if counts := formatErrorCounts(sum.Errors); counts != "" {
		fmt.Fprintf(r.W, "  Errors:           %s\n", red(counts))
	}

	fmt.Fprintf(r.W, "  Time taken: %s %s\n",
		sum.Duration.Round(time.Millisecond), gray(fmt.Sprintf("(run %s)", shortID(sum.RunID))))
}

func (r Renderer) shorten(path string) string {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func formatErrorCounts(errs map[types.ErrorKind]int) string {
	if len(errs) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(errs))
	for k := range errs {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", errs[types.ErrorKind(k)], k))
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
