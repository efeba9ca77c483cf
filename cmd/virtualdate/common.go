package main

import (
	"fmt"
	"os"
	"time"

	"github.com/crystallabs/virtualdate/internal/config"
	"github.com/crystallabs/virtualdate/internal/scheduler"
	"github.com/crystallabs/virtualdate/internal/store"
)

func loadDocument(path string) (*store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := store.Load(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// resolveWindow applies the command's --from/--to flags: an unset --from
// falls back to now, and an unset --to falls back to the window start plus
// DefaultWindowDays from the ambient config, matching the teacher's
// convention of config values being fallbacks rather than overrides.
func resolveWindow(fromFlag, toFlag string, cfg config.Config) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now
	to := now.AddDate(0, 0, cfg.DefaultWindowDays)

	if fromFlag != "" {
		parsed, err := time.Parse(time.RFC3339, fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		from = parsed
	}
	if toFlag != "" {
		parsed, err := time.Parse(time.RFC3339, toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		to = parsed
	} else if fromFlag != "" {
		to = from.AddDate(0, 0, cfg.DefaultWindowDays)
	}
	return from, to, nil
}

func buildInstances(path, fromFlag, toFlag string) ([]*scheduler.ScheduledInstance, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	from, to, err := resolveWindow(fromFlag, toFlag, cfg)
	if err != nil {
		return nil, err
	}
	s := scheduler.New(doc.Tasks, logger)
	return s.Build(from, to)
}
