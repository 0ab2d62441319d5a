package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const MaxRRuleLength = 2000

// RuleInfo is the parsed form of a stored RRULE string. Until carries the
// extracted UNTIL instant in UTC; Option.Dtstart and Option.Until are left
// for the expander to manage.
type RuleInfo struct {
	Option rrule.ROption
	Until  time.Time
}

// ParseRRule validates stored rule text: RFC 5545 syntax, UNTIL required and
// UTC ("Z"-terminated), COUNT forbidden, bounded length. The text itself is
// never rewritten; callers persist it bit-exact.
func ParseRRule(text string) (RuleInfo, error) {
	if strings.TrimSpace(text) == "" {
		return RuleInfo{}, fmt.Errorf("rrule is required")
	}
	if len(text) > MaxRRuleLength {
		return RuleInfo{}, fmt.Errorf("rrule too long")
	}

	var untilRaw string
	hasFreq := false
	for _, part := range strings.Split(strings.TrimPrefix(text, "RRULE:"), ";") {
		name, value, _ := strings.Cut(part, "=")
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "COUNT":
			return RuleInfo{}, fmt.Errorf("rrule must not contain COUNT")
		case "UNTIL":
			untilRaw = strings.TrimSpace(value)
		case "FREQ":
			hasFreq = true
		}
	}
	if !hasFreq {
		return RuleInfo{}, fmt.Errorf("rrule must contain FREQ")
	}
	if untilRaw == "" {
		return RuleInfo{}, fmt.Errorf("rrule must contain UNTIL")
	}
	if !strings.HasSuffix(untilRaw, "Z") {
		return RuleInfo{}, fmt.Errorf("rrule UNTIL must be UTC")
	}

	opt, err := rrule.StrToROption(text)
	if err != nil {
		return RuleInfo{}, fmt.Errorf("invalid rrule: %w", err)
	}
	if opt.Until.IsZero() {
		return RuleInfo{}, fmt.Errorf("invalid rrule UNTIL")
	}
	return RuleInfo{Option: *opt, Until: opt.Until.UTC()}, nil
}

// HasExtraByRules reports whether the rule carries by-parts beyond a single
// BYMONTHDAY. Such rules stay on the standard enumerator, which honors
// them; the month-day gap analysis and the clamp enumerator only reason
// about plain monthly day-of-month rules.
func (info RuleInfo) HasExtraByRules() bool {
	opt := info.Option
	return len(opt.Bysetpos) > 0 ||
		len(opt.Bymonth) > 0 ||
		len(opt.Byyearday) > 0 ||
		len(opt.Byweekno) > 0 ||
		len(opt.Byweekday) > 0 ||
		len(opt.Byhour) > 0 ||
		len(opt.Byminute) > 0 ||
		len(opt.Bysecond) > 0
}

// MonthlyTargetDay reports the day-of-month a monthly rule is anchored on: a
// single BYMONTHDAY if present, otherwise the anchor's local day. ok is
// false for non-monthly rules and BYMONTHDAY sets that are not one positive
// day.
func (info RuleInfo) MonthlyTargetDay(anchorLocal time.Time) (int, bool) {
	if info.Option.Freq != rrule.MONTHLY {
		return 0, false
	}
	switch len(info.Option.Bymonthday) {
	case 0:
		return anchorLocal.Day(), true
	case 1:
		d := info.Option.Bymonthday[0]
		if d < 1 || d > 31 {
			return 0, false
		}
		return d, true
	default:
		return 0, false
	}
}
