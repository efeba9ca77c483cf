package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	watchOut string
)

var watchCmd = &cobra.Command{
	Use:   "watch <schedule.yaml>",
	Short: "Rebuild and re-export to iCalendar on every change to the schedule file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(args[0], watchOut)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOut, "out", "", "output .ics path (required)")
	_ = watchCmd.MarkFlagRequired("out")
}

// runWatch reloads and re-exports schedulePath whenever it changes on
// disk, mirroring the bmw-saver config watcher's directory-watch-then-
// filter-by-name approach (fsnotify only reports reliably at directory
// granularity on most platforms).
func runWatch(schedulePath, out string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(schedulePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	reload := func() {
		instances, err := buildInstances(schedulePath, "", "")
		if err != nil {
			logger.Printf("reload failed: %v", err)
			return
		}
		if err := exportToFile(schedulePath, instances, out); err != nil {
			logger.Printf("export failed: %v", err)
			return
		}
		logger.Printf("reloaded %s -> %s (%d instances)", schedulePath, out, len(instances))
	}

	reload()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name == schedulePath && event.Op&fsnotify.Write == fsnotify.Write {
				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watcher error: %v", err)
		}
	}
}
