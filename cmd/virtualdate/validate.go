package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystallabs/virtualdate/internal/apperrors"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schedule.yaml...>",
	Short: "Validate one or more schedule files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := make([]error, len(args))

		var g errgroup.Group
		var mu sync.Mutex
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				_, err := loadDocument(path)
				mu.Lock()
				results[i] = err
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		failed := false
		for i, path := range args {
			if results[i] == nil {
				fmt.Printf("%s: OK\n", path)
				continue
			}
			failed = true
			fmt.Printf("%s: FAILED\n", path)
			if verr, ok := results[i].(*apperrors.ValidationError); ok {
				for _, issue := range verr.Issues {
					fmt.Printf("  %s\n", issue.String())
				}
			} else {
				fmt.Printf("  %v\n", results[i])
			}
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}
