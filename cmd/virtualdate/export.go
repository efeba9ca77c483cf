package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystallabs/virtualdate/internal/ical"
	"github.com/crystallabs/virtualdate/internal/scheduler"
)

var (
	exportFrom string
	exportTo   string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export <schedule.yaml>",
	Short: "Build a schedule file's instances and export them to iCalendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := buildInstances(args[0], exportFrom, exportTo)
		if err != nil {
			return err
		}
		return exportToFile(args[0], instances, exportOut)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "RFC 3339 window start (default: now)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "RFC 3339 window end (default: from + default window)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output .ics path (required)")
	_ = exportCmd.MarkFlagRequired("out")
}

func exportToFile(schedulePath string, instances []*scheduler.ScheduledInstance, out string) error {
	name := strings.TrimSuffix(filepath.Base(schedulePath), filepath.Ext(schedulePath))
	doc := ical.Export(instances, name)
	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
