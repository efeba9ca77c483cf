package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crystallabs/virtualdate/internal/scheduler"
)

var (
	buildFrom string
	buildTo   string
)

var buildCmd = &cobra.Command{
	Use:   "build <schedule.yaml>",
	Short: "Build the scheduled instances for a schedule file over a time window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := buildInstances(args[0], buildFrom, buildTo)
		if err != nil {
			return err
		}
		printInstances(instances)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildFrom, "from", "", "RFC 3339 window start (default: now)")
	buildCmd.Flags().StringVar(&buildTo, "to", "", "RFC 3339 window end (default: from + default window)")
}

func printInstances(instances []*scheduler.ScheduledInstance) {
	fmt.Printf("%-24s %-25s %-25s\n", "TASK", "START", "FINISH")
	for _, inst := range instances {
		fmt.Printf("%-24s %-25s %-25s\n", inst.Task.ID, inst.Start.Format("2006-01-02T15:04:05Z07:00"), inst.Finish.Format("2006-01-02T15:04:05Z07:00"))
	}
}
