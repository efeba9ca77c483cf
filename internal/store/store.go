// Package store implements the schema-versioned YAML persistence format:
// loading (with accumulated, line/column-addressed validation errors),
// and saving back to the canonical mapping form.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crystallabs/virtualdate/internal/apperrors"
	"github.com/crystallabs/virtualdate/internal/pattern"
	"github.com/crystallabs/virtualdate/internal/task"
)

// CurrentSchemaVersion is the schema_version this package writes and the
// highest one it will load.
const CurrentSchemaVersion = 2

// Document is a loaded schedule file: its schema version and tasks.
type Document struct {
	SchemaVersion int
	Tasks         []*task.TaskPattern
}

// timePatternFields lists the 11 TimePattern slot keys recognized inside
// a pattern mapping (the "location" key is handled separately).
var timePatternFields = []string{
	"year", "month", "day", "week", "day_of_week", "day_of_year",
	"hour", "minute", "second", "millisecond", "nanosecond",
}

// Load parses a schedule document. Both the current mapping form
// (schema_version + tasks) and the legacy bare task-sequence form are
// accepted. Every recognized problem is accumulated into a single
// *apperrors.ValidationError rather than stopping at the first one; a
// schema_version above CurrentSchemaVersion is reported immediately as a
// structural *apperrors.AppError since no part of the document can be
// trusted once that's true.
func Load(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &apperrors.ValidationError{Issues: []apperrors.ValidationIssue{
			{Line: 1, Column: 1, Message: fmt.Sprintf("invalid YAML: %v", err)},
		}}
	}
	if len(root.Content) == 0 {
		return &Document{SchemaVersion: CurrentSchemaVersion}, nil
	}
	top := root.Content[0]

	var tasksNode *yaml.Node
	schemaVersion := CurrentSchemaVersion

	switch top.Kind {
	case yaml.SequenceNode:
		tasksNode = top
		schemaVersion = 1
	case yaml.MappingNode:
		if v := mapLookup(top, "schema_version"); v != nil {
			n, err := strconv.Atoi(strings.TrimSpace(v.Value))
			if err != nil {
				return nil, apperrors.InvalidArgument("schema_version must be an integer, got %q", v.Value)
			}
			schemaVersion = n
		}
		if schemaVersion > CurrentSchemaVersion {
			return nil, apperrors.InvalidArgument("schema_version %d is newer than the supported version %d", schemaVersion, CurrentSchemaVersion)
		}
		tasksNode = mapLookup(top, "tasks")
		if tasksNode == nil {
			return nil, &apperrors.ValidationError{Issues: []apperrors.ValidationIssue{
				{Line: top.Line, Column: top.Column, Message: "document is missing a top-level \"tasks\" sequence"},
			}}
		}
	default:
		return nil, &apperrors.ValidationError{Issues: []apperrors.ValidationIssue{
			{Line: top.Line, Column: top.Column, Message: "document root must be a mapping or a sequence"},
		}}
	}

	var issues []apperrors.ValidationIssue
	byID := make(map[string]*task.TaskPattern)
	var tasks []*task.TaskPattern
	type placed struct {
		node *yaml.Node
		tp   *task.TaskPattern
	}
	var accepted []placed

	for _, node := range tasksNode.Content {
		node := node
		tp, taskIssues := parseTask(node)
		issues = append(issues, taskIssues...)
		if tp != nil {
			if _, dup := byID[tp.ID]; dup {
				issues = append(issues, apperrors.ValidationIssue{
					Line: node.Line, Column: node.Column,
					Message: fmt.Sprintf("duplicate task id %q", tp.ID),
				})
			} else {
				byID[tp.ID] = tp
				tasks = append(tasks, tp)
				accepted = append(accepted, placed{node: node, tp: tp})
			}
		}
	}

	for _, p := range accepted {
		for _, depID := range p.tp.DependsOnIDs {
			dep, ok := byID[depID]
			if !ok {
				issues = append(issues, apperrors.ValidationIssue{
					Line: p.node.Line, Column: p.node.Column,
					Message: fmt.Sprintf("task %q depends on unknown task id %q", p.tp.ID, depID),
				})
				continue
			}
			p.tp.DependsOn = append(p.tp.DependsOn, dep)
		}
	}

	if len(issues) > 0 {
		return nil, &apperrors.ValidationError{Issues: issues}
	}
	return &Document{SchemaVersion: schemaVersion, Tasks: tasks}, nil
}

func mapLookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func parseTask(node *yaml.Node) (*task.TaskPattern, []apperrors.ValidationIssue) {
	var issues []apperrors.ValidationIssue
	if node.Kind != yaml.MappingNode {
		return nil, []apperrors.ValidationIssue{{Line: node.Line, Column: node.Column, Message: "task entry must be a mapping"}}
	}

	idNode := mapLookup(node, "id")
	if idNode == nil || idNode.Value == "" {
		issues = append(issues, apperrors.ValidationIssue{Line: node.Line, Column: node.Column, Message: "task is missing required field \"id\""})
		return nil, issues
	}
	tp := task.New(idNode.Value)

	if v := mapLookup(node, "begin"); v != nil {
		m, err := parseMoment(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.Begin = m
		}
	}
	if v := mapLookup(node, "end"); v != nil {
		m, err := parseMoment(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.End = m
		}
	}
	if v := mapLookup(node, "deadline"); v != nil {
		m, err := parseMoment(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.Deadline = m
		}
	}

	if v := mapLookup(node, "due"); v != nil {
		patterns, perr := parseTimePatternList(v)
		issues = append(issues, perr...)
		tp.Due = patterns
	}
	if v := mapLookup(node, "omit"); v != nil {
		patterns, perr := parseTimePatternList(v)
		issues = append(issues, perr...)
		tp.Omit = patterns
	}

	if v := mapLookup(node, "shift"); v != nil {
		o, err := parseOverride(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.Shift = o
		}
	}
	if v := mapLookup(node, "max_shift"); v != nil && v.Tag != "!!null" {
		d, err := parseSecondsNode(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.MaxShift = &d
		}
	}
	if v := mapLookup(node, "max_shifts"); v != nil {
		n, err := strconv.Atoi(strings.TrimSpace(v.Value))
		if err != nil {
			issues = append(issues, issueFrom(v, fmt.Errorf("max_shifts must be an integer")))
		} else {
			tp.MaxShifts = n
		}
	}
	if v := mapLookup(node, "on"); v != nil {
		o, err := parseOverride(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.OnOverride = o
		}
	}
	if v := mapLookup(node, "duration"); v != nil {
		d, err := parseSecondsNode(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.Duration = d
		}
	}
	if v := mapLookup(node, "flags"); v != nil {
		if v.Kind != yaml.SequenceNode {
			issues = append(issues, issueFrom(v, fmt.Errorf("flags must be a sequence of strings")))
		} else {
			names := make([]string, len(v.Content))
			for i, f := range v.Content {
				names[i] = f.Value
			}
			tp.SetFlags(names...)
		}
	}
	if v := mapLookup(node, "parallel"); v != nil {
		n, err := strconv.Atoi(strings.TrimSpace(v.Value))
		if err != nil {
			issues = append(issues, issueFrom(v, fmt.Errorf("parallel must be an integer")))
		} else {
			tp.Parallel = n
		}
	}
	if v := mapLookup(node, "priority"); v != nil {
		n, err := strconv.Atoi(strings.TrimSpace(v.Value))
		if err != nil {
			issues = append(issues, issueFrom(v, fmt.Errorf("priority must be an integer")))
		} else {
			tp.Priority = n
		}
	}
	if v := mapLookup(node, "fixed"); v != nil {
		b, err := strconv.ParseBool(strings.TrimSpace(v.Value))
		if err != nil {
			issues = append(issues, issueFrom(v, fmt.Errorf("fixed must be a boolean")))
		} else {
			tp.Fixed = b
		}
	}
	if v := mapLookup(node, "stagger"); v != nil && v.Tag != "!!null" {
		d, err := parseSecondsNode(v)
		if err != nil {
			issues = append(issues, issueFrom(v, err))
		} else {
			tp.Stagger = &d
		}
	}
	if v := mapLookup(node, "depends_on"); v != nil {
		if v.Kind != yaml.SequenceNode {
			issues = append(issues, issueFrom(v, fmt.Errorf("depends_on must be a sequence of task ids")))
		} else {
			for _, idn := range v.Content {
				tp.DependsOnIDs = append(tp.DependsOnIDs, idn.Value)
			}
		}
	}

	if err := tp.Validate(); err != nil {
		issues = append(issues, apperrors.ValidationIssue{Line: node.Line, Column: node.Column, Message: err.Error()})
	}

	return tp, issues
}

func issueFrom(node *yaml.Node, err error) apperrors.ValidationIssue {
	return apperrors.ValidationIssue{Line: node.Line, Column: node.Column, Message: err.Error()}
}

func parseSecondsNode(node *yaml.Node) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		return 0, fmt.Errorf("expected integer seconds, got %q", node.Value)
	}
	return time.Duration(n) * time.Second, nil
}

func parseOverride(node *yaml.Node) (task.Override, error) {
	if node.Tag == "!!null" || node.Value == "" {
		return task.Override{Kind: task.OverrideNull}, nil
	}
	if b, err := strconv.ParseBool(node.Value); err == nil {
		if b {
			return task.Override{Kind: task.OverrideTrue}, nil
		}
		return task.Override{Kind: task.OverrideFalse}, nil
	}
	d, err := parseSecondsNode(node)
	if err != nil {
		return task.Override{}, fmt.Errorf("expected null, boolean, or integer seconds, got %q", node.Value)
	}
	return task.Override{Kind: task.OverrideDuration, Duration: d}, nil
}

func parseMoment(node *yaml.Node) (*task.Moment, error) {
	if node.Kind == yaml.MappingNode {
		p, issues := parseTimePatternMapping(node)
		if len(issues) > 0 {
			return nil, fmt.Errorf("%s", issues[0].Message)
		}
		m := task.FromPattern(p)
		return &m, nil
	}
	raw := strings.TrimSpace(node.Value)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		m := task.AtInstant(t)
		return &m, nil
	}
	if isCronLike(raw) {
		p, err := pattern.FromCronExpression(raw)
		if err != nil {
			return nil, err
		}
		m := task.FromPattern(p)
		return &m, nil
	}
	return nil, fmt.Errorf("expected an RFC 3339 instant, a cron expression, or a pattern mapping, got %q", node.Value)
}

// isCronLike reports whether raw looks like a 5-field cron expression
// rather than an RFC 3339 instant, used to decide which sugar form a bare
// scalar due/omit/begin/end/deadline entry is using.
func isCronLike(raw string) bool {
	return len(strings.Fields(raw)) == 5
}

func parseTimePatternList(node *yaml.Node) ([]pattern.TimePattern, []apperrors.ValidationIssue) {
	if node.Kind != yaml.SequenceNode {
		return nil, []apperrors.ValidationIssue{issueFrom(node, fmt.Errorf("expected a sequence of pattern mappings"))}
	}
	var issues []apperrors.ValidationIssue
	patterns := make([]pattern.TimePattern, 0, len(node.Content))
	for _, entry := range node.Content {
		if entry.Kind == yaml.ScalarNode && isCronLike(strings.TrimSpace(entry.Value)) {
			p, err := pattern.FromCronExpression(strings.TrimSpace(entry.Value))
			if err != nil {
				issues = append(issues, issueFrom(entry, err))
				continue
			}
			patterns = append(patterns, p)
			continue
		}
		p, entryIssues := parseTimePatternMapping(entry)
		issues = append(issues, entryIssues...)
		patterns = append(patterns, p)
	}
	return patterns, issues
}

func parseTimePatternMapping(node *yaml.Node) (pattern.TimePattern, []apperrors.ValidationIssue) {
	p := pattern.New()
	if node.Kind != yaml.MappingNode {
		return p, []apperrors.ValidationIssue{issueFrom(node, fmt.Errorf("expected a pattern mapping"))}
	}

	var issues []apperrors.ValidationIssue
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		valueNode := node.Content[i+1]

		if key == "location" {
			loc, err := time.LoadLocation(valueNode.Value)
			if err != nil {
				issues = append(issues, issueFrom(valueNode, fmt.Errorf("invalid location %q", valueNode.Value)))
				continue
			}
			p.Location = loc
			continue
		}

		if !isTimePatternField(key) {
			issues = append(issues, issueFrom(node.Content[i], fmt.Errorf("unknown pattern field %q", key)))
			continue
		}

		fp, err := pattern.ParseScalar(valueNode.Value)
		if err != nil {
			issues = append(issues, issueFrom(valueNode, err))
			continue
		}
		if err := fp.Validate(); err != nil {
			issues = append(issues, issueFrom(valueNode, err))
			continue
		}
		setTimePatternField(&p, key, fp)
	}
	return p, issues
}

func isTimePatternField(key string) bool {
	for _, f := range timePatternFields {
		if f == key {
			return true
		}
	}
	return false
}

func setTimePatternField(p *pattern.TimePattern, key string, fp pattern.FieldPattern) {
	switch key {
	case "year":
		p.Year = fp
	case "month":
		p.Month = fp
	case "day":
		p.Day = fp
	case "week":
		p.Week = fp
	case "day_of_week":
		p.DayOfWeek = fp
	case "day_of_year":
		p.DayOfYear = fp
	case "hour":
		p.Hour = fp
	case "minute":
		p.Minute = fp
	case "second":
		p.Second = fp
	case "millisecond":
		p.Millisecond = fp
	case "nanosecond":
		p.Nanosecond = fp
	}
}
