package store

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/crystallabs/virtualdate/internal/pattern"
	"github.com/crystallabs/virtualdate/internal/task"
)

// Save renders tasks into the canonical mapping form (schema_version +
// tasks), using pattern.FormatScalar for every pattern-bearing field.
func Save(tasks []*task.TaskPattern) ([]byte, error) {
	doc := yamlMapping(
		"schema_version", CurrentSchemaVersion,
		"tasks", taskSeq(tasks),
	)
	return yaml.Marshal(doc)
}

// orderedMap preserves key order through yaml.Marshal via yaml.MapSlice's
// successor: yaml.v3 marshals map[string]any in Go's randomized order, so
// the canonical form is built from an explicit slice of yaml.Node pairs
// instead.
type orderedMap struct {
	pairs []pair
}

type pair struct {
	key   string
	value any
}

func yamlMapping(kv ...any) *orderedMap {
	m := &orderedMap{}
	for i := 0; i+1 < len(kv); i += 2 {
		m.pairs = append(m.pairs, pair{key: kv[i].(string), value: kv[i+1]})
	}
	return m
}

func (m *orderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range m.pairs {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: p.key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(p.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func taskSeq(tasks []*task.TaskPattern) []*orderedMap {
	out := make([]*orderedMap, 0, len(tasks))
	for _, tp := range tasks {
		out = append(out, taskMapping(tp))
	}
	return out
}

func taskMapping(tp *task.TaskPattern) *orderedMap {
	kv := []any{"id", tp.ID}

	if tp.Begin != nil {
		kv = append(kv, "begin", momentValue(tp.Begin))
	}
	if tp.End != nil {
		kv = append(kv, "end", momentValue(tp.End))
	}
	if len(tp.Due) > 0 {
		kv = append(kv, "due", timePatternSeq(tp.Due))
	}
	if len(tp.Omit) > 0 {
		kv = append(kv, "omit", timePatternSeq(tp.Omit))
	}

	kv = append(kv, "shift", overrideValue(tp.Shift))
	if tp.MaxShift != nil {
		kv = append(kv, "max_shift", int(tp.MaxShift.Seconds()))
	}
	kv = append(kv, "max_shifts", tp.MaxShifts)
	kv = append(kv, "on", overrideValue(tp.OnOverride))
	kv = append(kv, "duration", int(tp.Duration.Seconds()))

	if tp.HasFlags() {
		flags := make([]string, 0, len(tp.Flags))
		for f := range tp.Flags {
			flags = append(flags, f)
		}
		sort.Strings(flags)
		kv = append(kv, "flags", flags)
	}

	kv = append(kv, "parallel", tp.Parallel)
	kv = append(kv, "priority", tp.Priority)
	kv = append(kv, "fixed", tp.Fixed)

	if tp.Stagger != nil {
		kv = append(kv, "stagger", int(tp.Stagger.Seconds()))
	}
	if tp.Deadline != nil {
		kv = append(kv, "deadline", momentValue(tp.Deadline))
	}
	if len(tp.DependsOn) > 0 {
		ids := make([]string, len(tp.DependsOn))
		for i, d := range tp.DependsOn {
			ids[i] = d.ID
		}
		kv = append(kv, "depends_on", ids)
	} else if len(tp.DependsOnIDs) > 0 {
		kv = append(kv, "depends_on", tp.DependsOnIDs)
	}

	return yamlMapping(kv...)
}

func overrideValue(o task.Override) any {
	switch o.Kind {
	case task.OverrideNull:
		return nil
	case task.OverrideFalse:
		return false
	case task.OverrideTrue:
		return true
	case task.OverrideDuration:
		return int(o.Duration.Seconds())
	default:
		return nil
	}
}

func momentValue(m *task.Moment) any {
	if m.IsPattern() {
		return timePatternMapping(m.Pattern())
	}
	return m.Instant().Format("2006-01-02T15:04:05Z07:00")
}

func timePatternSeq(list []pattern.TimePattern) []*orderedMap {
	out := make([]*orderedMap, 0, len(list))
	for _, p := range list {
		out = append(out, timePatternMapping(p))
	}
	return out
}

func timePatternMapping(p pattern.TimePattern) *orderedMap {
	var kv []any
	add := func(key string, fp pattern.FieldPattern) {
		if fp.Kind() == pattern.KindUnset {
			return
		}
		kv = append(kv, key, pattern.FormatScalar(fp))
	}
	add("year", p.Year)
	add("month", p.Month)
	add("day", p.Day)
	add("week", p.Week)
	add("day_of_week", p.DayOfWeek)
	add("day_of_year", p.DayOfYear)
	add("hour", p.Hour)
	add("minute", p.Minute)
	add("second", p.Second)
	add("millisecond", p.Millisecond)
	add("nanosecond", p.Nanosecond)
	if p.Location != nil {
		kv = append(kv, "location", p.Location.String())
	}
	return yamlMapping(kv...)
}
