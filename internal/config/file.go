package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dupetools/dupes/internal/types"
)

// File is the on-disk config file shape. Every field is optional; unset
// fields leave the corresponding option untouched. The same struct is
// reused for DUPES_* environment overrides.
type File struct {
	Mode            string `yaml:"mode" envconfig:"MODE"`
	Keep            string `yaml:"keep" envconfig:"KEEP"`
	Order           string `yaml:"order" envconfig:"ORDER"`
	SortOutput      string `yaml:"sort_output" envconfig:"SORT_OUTPUT"`
	Threads         int    `yaml:"threads" envconfig:"THREADS"`
	SimilarityScore *int   `yaml:"similarity_score" envconfig:"SIMILARITY_SCORE"`
	IgnoreErrors    *bool  `yaml:"ignore_errors" envconfig:"IGNORE_ERRORS"`
}

// DefaultPath returns the per-user config file location, normally
// ~/.config/dupes/config.yaml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "dupes", "config.yaml"), nil
}

// Load reads the config file at path. A missing file is not an error; it
// yields an empty File that overrides nothing.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &f, nil
}

// Apply overlays the file's set fields onto opts.
func (f *File) Apply(opts *Options) error {
	if f.Mode != "" {
		m := types.Mode(f.Mode)
		if !m.IsValid() {
			return fmt.Errorf("invalid mode %q in config", f.Mode)
		}
		opts.Mode = m
	}
	if f.Keep != "" {
		k := types.KeepPolicy(f.Keep)
		if !k.IsValid() {
			return fmt.Errorf("invalid keep policy %q in config", f.Keep)
		}
		opts.Keep = k
	}
	if f.Order != "" {
		o := types.OrderBy(f.Order)
		if !o.IsValid() {
			return fmt.Errorf("invalid order %q in config", f.Order)
		}
		opts.Order = o
	}
	if f.SortOutput != "" {
		s := types.OrderBy(f.SortOutput)
		if !s.IsValid() {
			return fmt.Errorf("invalid sort_output %q in config", f.SortOutput)
		}
		opts.SortOutput = s
	}
	if f.Threads > 0 {
		opts.Threads = f.Threads
	}
	if f.SimilarityScore != nil {
		opts.SimilarityScore = *f.SimilarityScore
	}
	if f.IgnoreErrors != nil {
		opts.IgnoreErrors = *f.IgnoreErrors
	}
	return nil
}

// WriteExample writes a commented example config to path, creating parent
// directories as needed. Refuses to overwrite an existing file unless
// force is set.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Example()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Example returns an example configuration file with every supported key.
func Example() string {
	return `# dupes configuration
# Flags override environment variables, which override this file.

# Detection mode (hash/similarity)
mode: hash

# Which member of each group to keep (first/last)
keep: first

# Sort criterion applied inside each group before keeping (modified/created/name)
order: modified

# Sort groups in the report (modified/created/name). Omit for scan order.
# sort_output: name

# Fingerprint worker count
threads: 8

# Minimum similarity score for two images to match (similarity mode, 0-100)
similarity_score: 95

# Keep scanning when individual files fail to list or read
ignore_errors: true
`
}
