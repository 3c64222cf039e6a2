package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "Gavel - federal court compliance engine",
	Long: `Gavel is a compliance rule engine for federal court case management.

It evaluates docket events against compiled federal procedure rules and
court-specific local rules, providing:
  - Holiday-aware deadline computation under the FRCP 6(a) counting rule
  - Case status transition validation for criminal and civil tracks
  - Speedy Trial Act clock tracking with excludable-delay tolling
  - Weighted random judge assignment with conflict screening
  - An append-only audit log for every decision`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
