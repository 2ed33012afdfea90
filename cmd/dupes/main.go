package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dupetools/dupes/internal/config"
	"github.com/dupetools/dupes/internal/engine"
	"github.com/dupetools/dupes/internal/progress"
	"github.com/dupetools/dupes/internal/report"
	"github.com/dupetools/dupes/internal/types"
)

var version = "0.1.0"

var (
	scanPath            string
	scanNoRecursive     bool
	scanMode            string
	scanKeep            string
	scanOrder           string
	scanSortOutput      string
	scanThreads         int
	scanSimilarityScore int
	scanDelete          bool
	scanNoIgnoreErrors  bool
	scanNoSummary       bool
	scanQuiet           bool
	scanConfig          string
)

var rootCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Find and remove duplicate files",
	Long: `Dupes scans a directory for duplicate files and reports them in groups,
one survivor marked per group. Nothing is deleted unless --delete is given.

Two detection modes are available:
  hash        byte-identical files (full-content SHA-256, the default)
  similarity  visually similar images (perceptual hash, tunable threshold)

Which file in a group survives is controlled by --keep and --order: members
are sorted by the order criterion and the first or last one is kept.

Settings come from (lowest to highest precedence) the config file, DUPES_*
environment variables, and flags. Run 'dupes init' to write an example
config file.

Examples:
  dupes --path ~/photos                                  # dry run, exact duplicates
  dupes --path ~/photos --mode similarity                # near-identical images
  dupes --path ~/photos --mode similarity --similarity-score 80
  dupes --path ~/downloads --delete --keep last --order created
  dupes --path /data --no-recursive --sort-output name
  dupes --path /backup --delete --no-ignore-errors       # abort on any file error`,
	Version: version,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runScan(ctx, cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	registerScanFlags(rootCmd)
	_ = rootCmd.MarkFlagRequired("path")
}

// registerScanFlags binds the scan flags to cmd, resetting the bound
// variables to their defaults.
func registerScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scanPath, "path", "", "Directory to scan (required)")
	cmd.Flags().BoolVar(&scanNoRecursive, "no-recursive", false, "Scan only the top level of the directory")
	cmd.Flags().StringVar(&scanMode, "mode", "hash", "Detection mode: hash or similarity")
	cmd.Flags().StringVar(&scanKeep, "keep", "first", "Group member to keep: first or last")
	cmd.Flags().StringVar(&scanOrder, "order", "modified", "Sort criterion for --keep: modified, created, or name")
	cmd.Flags().StringVar(&scanSortOutput, "sort-output", "", "Sort groups in the report: modified, created, or name")
	cmd.Flags().IntVar(&scanThreads, "threads", 8, "Fingerprint worker count")
	cmd.Flags().IntVar(&scanSimilarityScore, "similarity-score", 95, "Minimum similarity score 0-100 (similarity mode)")
	cmd.Flags().BoolVar(&scanDelete, "delete", false, "Delete duplicates instead of reporting them")
	cmd.Flags().BoolVar(&scanNoIgnoreErrors, "no-ignore-errors", false, "Abort the run on the first file error")
	cmd.Flags().BoolVar(&scanNoSummary, "no-summary", false, "Skip the end-of-run summary block")
	cmd.Flags().BoolVar(&scanQuiet, "quiet", false, "Suppress all output (exit code only)")
	cmd.Flags().StringVar(&scanConfig, "config", "", "Config file location (default: user config dir)")
}

// buildOptions layers the run settings: defaults, then the config file,
// then DUPES_* environment variables, then explicitly set flags.
func buildOptions(cmd *cobra.Command) (config.Options, error) {
	opts := config.DefaultOptions()

	cfgPath := scanConfig
	if cfgPath == "" {
		if p, err := config.DefaultPath(); err == nil {
			cfgPath = p
		}
	}
	if cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			return opts, err
		}
		if err := f.Apply(&opts); err != nil {
			return opts, fmt.Errorf("config file %s: %w", cfgPath, err)
		}
	}

	if err := config.FromEnv(&opts); err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	opts.Path = scanPath
	if flags.Changed("no-recursive") {
		opts.Recursive = !scanNoRecursive
	}
	if flags.Changed("mode") {
		opts.Mode = types.Mode(scanMode)
	}
	if flags.Changed("keep") {
		opts.Keep = types.KeepPolicy(scanKeep)
	}
	if flags.Changed("order") {
		opts.Order = types.OrderBy(scanOrder)
	}
	if flags.Changed("sort-output") {
		opts.SortOutput = types.OrderBy(scanSortOutput)
	}
	if flags.Changed("threads") {
		opts.Threads = scanThreads
	}
	if flags.Changed("similarity-score") {
		opts.SimilarityScore = scanSimilarityScore
	}
	if flags.Changed("delete") {
		opts.Delete = scanDelete
	}
	if flags.Changed("no-ignore-errors") {
		opts.IgnoreErrors = !scanNoIgnoreErrors
	}
	if flags.Changed("no-summary") {
		opts.ShowSummary = !scanNoSummary
	}
	if flags.Changed("quiet") {
		opts.Quiet = scanQuiet
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func runScan(ctx context.Context, cmd *cobra.Command) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	showProgress := !opts.Quiet && isatty.IsTerminal(os.Stdout.Fd())
	tracker := progress.New(os.Stdout, showProgress)

	res, err := engine.New(opts, tracker).Run(ctx)
	if err != nil {
		return err
	}

	sum := report.Build(report.Input{
		RunID:          res.RunID,
		Root:           res.Root,
		Mode:           opts.Mode,
		DryRun:         res.Deletion.DryRun,
		Scanned:        res.Scanned,
		SizeCollisions: res.SizeCollisions,
		Groups:         res.Groups,
		Errors:         res.Errors,
		Deletion:       res.Deletion,
		Duration:       res.Duration(),
	})
	r := report.Renderer{
		W:           os.Stdout,
		Root:        res.Root,
		SortBy:      opts.SortOutput,
		ShowSummary: opts.ShowSummary,
		Quiet:       opts.Quiet,
	}
	r.Render(res.Groups, sum)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
