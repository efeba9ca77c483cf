package pattern

import (
	"strconv"
	"strings"

	"github.com/crystallabs/virtualdate/internal/apperrors"
)

// ParseScalar parses one pattern-scalar token per the grammar: "nil"
// (Unset); an integer (Exact); a comma-separated integer list (List);
// "A..B" (inclusive Range); "A...B" (exclusive Range); either range form
// with a "/S" step suffix (Stepped); "true"/"false" (Always); or a
// "->..." sentinel, which round-trips as an always-true placeholder for a
// predicate that cannot be expressed in the serialized form.
func ParseScalar(raw string) (FieldPattern, error) {
	s := strings.TrimSpace(raw)
	switch s {
	case "nil", "":
		return Unset(), nil
	case "true":
		return Always(true), nil
	case "false":
		return Always(false), nil
	}
	if strings.HasPrefix(s, "->") {
		return Always(true), nil
	}

	step := 0
	body := s
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		stepStr := s[idx+1:]
		n, err := strconv.Atoi(strings.TrimSpace(stepStr))
		if err != nil || n <= 0 {
			return FieldPattern{}, apperrors.InvalidPattern("invalid step suffix in pattern scalar %q", raw)
		}
		step = n
		body = s[:idx]
	}

	if idx := strings.Index(body, "..."); idx >= 0 {
		lo, hi, err := parseRangeEndpoints(body[:idx], body[idx+3:], raw)
		if err != nil {
			return FieldPattern{}, err
		}
		if step > 0 {
			return Stepped(lo, hi-1, step), nil
		}
		return Range(lo, hi, false), nil
	}
	if idx := strings.Index(body, ".."); idx >= 0 {
		lo, hi, err := parseRangeEndpoints(body[:idx], body[idx+2:], raw)
		if err != nil {
			return FieldPattern{}, err
		}
		if step > 0 {
			return Stepped(lo, hi, step), nil
		}
		return Range(lo, hi, true), nil
	}

	if strings.Contains(body, ",") {
		if step > 0 {
			return FieldPattern{}, apperrors.InvalidPattern("step suffix is not valid on a list in pattern scalar %q", raw)
		}
		parts := strings.Split(body, ",")
		values := make([]int, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return FieldPattern{}, apperrors.InvalidPattern("invalid integer %q in pattern scalar %q", part, raw)
			}
			values = append(values, n)
		}
		return List(values...), nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return FieldPattern{}, apperrors.InvalidPattern("invalid pattern scalar %q", raw)
	}
	if step > 0 {
		return Stepped(n, n, step), nil
	}
	return Exact(n), nil
}

func parseRangeEndpoints(loStr, hiStr, raw string) (int, int, error) {
	lo, err1 := strconv.Atoi(strings.TrimSpace(loStr))
	hi, err2 := strconv.Atoi(strings.TrimSpace(hiStr))
	if err1 != nil || err2 != nil {
		return 0, 0, apperrors.InvalidPattern("invalid range endpoints in pattern scalar %q", raw)
	}
	return lo, hi, nil
}

// FormatScalar renders f back into the pattern-scalar grammar, the
// canonical form store.Save emits. Predicate patterns are not
// serializable and render as the always-true sentinel.
func FormatScalar(f FieldPattern) string {
	switch f.Kind() {
	case KindUnset:
		return "nil"
	case KindAlways:
		if f.always {
			return "true"
		}
		return "false"
	case KindPredicate:
		return "->..."
	case KindExact:
		return strconv.Itoa(f.exact)
	case KindList:
		parts := make([]string, len(f.list))
		for i, n := range f.list {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case KindRange:
		sep := ".."
		if !f.inclusive {
			sep = "..."
		}
		return strconv.Itoa(f.lo) + sep + strconv.Itoa(f.hi)
	case KindStepped:
		return strconv.Itoa(f.lo) + ".." + strconv.Itoa(f.hi) + "/" + strconv.Itoa(f.step)
	default:
		return "nil"
	}
}
