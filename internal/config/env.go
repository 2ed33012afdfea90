package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// FromEnv overlays DUPES_* environment variables onto opts. Variables
// that are unset leave the options untouched, so the precedence order is
// defaults, then config file, then environment, then flags.
//
// Recognized variables: DUPES_MODE, DUPES_KEEP, DUPES_ORDER,
// DUPES_SORT_OUTPUT, DUPES_THREADS, DUPES_SIMILARITY_SCORE,
// DUPES_IGNORE_ERRORS.
func FromEnv(opts *Options) error {
	var f File
	if err := envconfig.Process("dupes", &f); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return f.Apply(opts)
}
