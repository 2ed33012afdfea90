package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dupetools/dupes/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example config file",
	Long: `Write a commented example config file with every supported key.

Without an argument the file goes to the per-user config directory
(~/.config/dupes/config.yaml on Linux), where dupes picks it up
automatically. An existing file is never overwritten unless --force
is given.

Example:
  dupes init
  dupes init --force
  dupes init /etc/dupes/config.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			p, err := config.DefaultPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			path = p
		}

		if err := config.WriteExample(path, initForce); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Wrote example config to %s\n", green("✓"), path)
		fmt.Printf("Edit it, or override per run with flags or DUPES_* environment variables\n")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
