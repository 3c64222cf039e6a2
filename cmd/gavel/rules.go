package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lexhaven/gavel/pkg/rules/parser"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with local rule files",
}

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate local rule files",
	Long: `Validate local rule YAML files for syntax and structural errors.

The lint command parses rule files the same way the engine does at
load time:
  - YAML syntax validation
  - Rule structure validation (effective window, status, priority)
  - Condition tree validation (operator arity, field references)
  - Action validation (deadline offsets, counting modes, fee amounts)

Examples:
  # Lint a single file
  gavel rules lint --file local_rules.yaml

  # Lint a directory
  gavel rules lint --dir rules/

  # JSON output for CI
  gavel rules lint --file local_rules.yaml --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintResult is one file's validation outcome.
type lintResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	RuleCount int      `json:"rule_count"`
	Errors    []string `json:"errors,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rule files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule files found")
	}

	results := make([]lintResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := lintRuleFile(file)
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s (%d rules)\n", r.File, r.RuleCount)
				continue
			}
			fmt.Printf("✗ %s\n", r.File)
			for _, e := range r.Errors {
				fmt.Printf("    %s\n", e)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(results))
	}
	return nil
}

func lintRuleFile(path string) lintResult {
	result := lintResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	rules, err := parser.ParseRuleFile(data, path)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			result.Errors = append(result.Errors, perr.Error())
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	result.Valid = true
	result.RuleCount = len(rules)
	return result
}
