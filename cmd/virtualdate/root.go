package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var logger = log.New(os.Stderr, "virtualdate: ", log.LstdFlags)

var rootCmd = &cobra.Command{
	Use:   "virtualdate",
	Short: "Recurring-task scheduling over a pattern-based calendar core",
	Long: `virtualdate loads a schedule file describing recurring tasks
(due/omit patterns, shift policies, dependencies), builds a concrete set of
scheduled instances over a time window, and can export that set to
iCalendar.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd, validateCmd, exportCmd, watchCmd)
}
