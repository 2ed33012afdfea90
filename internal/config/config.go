// Package config holds the run options and the layered sources that
// produce them: built-in defaults, the optional YAML config file,
// DUPES_* environment variables, and command-line flags, applied in
// that order.
package config

import (
	"fmt"

	"github.com/dupetools/dupes/internal/types"
)

// Options is the fully resolved configuration for one run.
type Options struct {
	// Path is the root directory to scan.
	Path string

	// Recursive controls whether subdirectories are traversed.
	Recursive bool

	// Mode decides equivalence: exact content hashing or perceptual
	// image similarity.
	Mode types.Mode

	// Keep picks which member of each sorted group survives.
	Keep types.KeepPolicy

	// Order sorts group members before Keep is applied.
	Order types.OrderBy

	// SortOutput orders groups for display. Empty means insertion order.
	SortOutput types.OrderBy

	// Threads is the fingerprint worker count.
	Threads int

	// SimilarityScore is the minimum score (0-100) for two images to be
	// considered duplicates. 100 requires identical perceptual hashes.
	SimilarityScore int

	// Delete removes duplicates. When false the run is a dry run that
	// only reports what would be deleted.
	Delete bool

	// IgnoreErrors keeps the run alive through per-file listing and
	// fingerprint failures. When false the first such failure aborts
	// the run before any deletion happens.
	IgnoreErrors bool

	// ShowSummary prints the end-of-run totals block.
	ShowSummary bool

	// Quiet suppresses all output. The exit code still reports failure.
	Quiet bool
}

// DefaultOptions returns the built-in defaults, before any config file,
// environment, or flag overrides.
func DefaultOptions() Options {
	return Options{
		Recursive:       true,
		Mode:            types.ModeHash,
		Keep:            types.KeepFirst,
		Order:           types.OrderModified,
		Threads:         8,
		SimilarityScore: 95,
		IgnoreErrors:    true,
		ShowSummary:     true,
	}
}

// Validate checks that the resolved options are usable.
func (o *Options) Validate() error {
	if o.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !o.Mode.IsValid() {
		return fmt.Errorf("invalid mode: %q (want hash or similarity)", o.Mode)
	}
	if !o.Keep.IsValid() {
		return fmt.Errorf("invalid keep policy: %q (want first or last)", o.Keep)
	}
	if !o.Order.IsValid() {
		return fmt.Errorf("invalid order: %q (want modified, created, or name)", o.Order)
	}
	if o.SortOutput != "" && !o.SortOutput.IsValid() {
		return fmt.Errorf("invalid sort-output: %q (want modified, created, or name)", o.SortOutput)
	}
	if o.Threads < 1 {
		return fmt.Errorf("threads must be at least 1 (got %d)", o.Threads)
	}
	if o.SimilarityScore < 0 || o.SimilarityScore > 100 {
		return fmt.Errorf("similarity score must be between 0 and 100 (got %d)", o.SimilarityScore)
	}
	return nil
}
