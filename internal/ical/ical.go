// Package ical renders scheduled instances as an iCalendar (RFC 5545)
// document, one VEVENT per instance, using github.com/arran4/golang-ical.
package ical

import (
	"sort"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/crystallabs/virtualdate/internal/scheduler"
)

const utcStamp = "20060102T150405Z"

// Export renders instances into a VCALENDAR document. calendarName, when
// non-empty, is set as the calendar's non-standard X-WR-CALNAME property,
// the de facto convention most calendar clients read for a display title.
func Export(instances []*scheduler.ScheduledInstance, calendarName string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//VirtualDate//Scheduler//EN")
	cal.SetCalscale("GREGORIAN")
	if calendarName != "" {
		cal.SetProperty(ics.Property("X-WR-CALNAME"), escapeText(calendarName))
	}

	now := time.Now().UTC().Format(utcStamp)
	for _, inst := range instances {
		event := cal.AddEvent(eventUID(inst))
		event.SetProperty(ics.ComponentPropertyDtstamp, now)
		event.SetProperty(ics.ComponentPropertyDtStart, inst.Start.UTC().Format(utcStamp))
		event.SetProperty(ics.ComponentPropertyDtEnd, inst.Finish.UTC().Format(utcStamp))
		event.SetProperty(ics.ComponentPropertySummary, escapeText(inst.Task.ID))
		event.SetProperty(ics.ComponentPropertyDescription, escapeText(description(inst)))
		if inst.Task.HasFlags() {
			event.SetProperty(ics.ComponentPropertyCategories, escapeText(flagsCSV(inst)))
		}
	}

	return cal.Serialize()
}

func eventUID(inst *scheduler.ScheduledInstance) string {
	return inst.Task.ID + "-" + strconv.FormatInt(inst.Start.Unix(), 10) + "@virtualdate"
}

func description(inst *scheduler.ScheduledInstance) string {
	text := inst.Explanation.Text()
	if !inst.Task.HasFlags() {
		return text
	}
	flagsLine := "Flags: " + flagsCSV(inst)
	if text == "" {
		return flagsLine
	}
	return text + "\n" + flagsLine
}

func flagsCSV(inst *scheduler.ScheduledInstance) string {
	names := make([]string, 0, len(inst.Task.Flags))
	for f := range inst.Task.Flags {
		names = append(names, f)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// escapeText applies the RFC 5545 §3.3.11 TEXT escaping rules: backslash,
// comma, and semicolon are backslash-escaped, and newlines become literal
// "\n" sequences.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
