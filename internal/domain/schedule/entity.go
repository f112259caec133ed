package schedule

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time ("HH:MM") with no date or zone attached.
// It only becomes an instant when anchored to a calendar date via At.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a "15:04" formatted wall-clock time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// At anchors the wall-clock time to date's calendar day in loc.
func (t TimeOfDay) At(date time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// Before reports whether t is earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	if t.Hour != u.Hour {
		return t.Hour < u.Hour
	}
	return t.Minute < u.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Block is one recurring weekly session: a set of weekdays plus a start/end
// time window and a late allowance (grace period after start during which a
// check-in still counts as on time).
type Block struct {
	Days          []time.Weekday
	Start         TimeOfDay
	End           TimeOfDay
	LateAllowance time.Duration
}

// Validate checks the block invariants: non-empty day set, start before end,
// non-negative late allowance.
func (b Block) Validate() error {
	if len(b.Days) == 0 {
		return ErrNoDays
	}
	if !b.Start.Before(b.End) {
		return ErrInvalidTimeWindow
	}
	if b.LateAllowance < 0 {
		return ErrNegativeAllowance
	}
	return nil
}

// Matches reports whether the block meets on the given weekday.
func (b Block) Matches(day time.Weekday) bool {
	for _, d := range b.Days {
		if d == day {
			return true
		}
	}
	return false
}

// FindBlockForDay returns the first block (in stored order) meeting on the
// given weekday. Multiple blocks matching the same weekday is legal; only the
// first is used for classification.
func FindBlockForDay(blocks []Block, day time.Weekday) (Block, bool) {
	for _, b := range blocks {
		if b.Matches(day) {
			return b, true
		}
	}
	return Block{}, false
}

// Occurrence is one concrete calendar-date instance of a schedule block.
// Derived on demand, never persisted.
type Occurrence struct {
	Date  time.Time
	Block Block
}

// Occurrences walks every calendar date from start to min(end, now) inclusive
// and returns the dates on which a block meets and whose start time has
// already passed. A session scheduled later today is not yet expected: a date
// counts only if the block's start on that date is not after now (inclusive
// boundary, start == now counts).
func Occurrences(blocks []Block, start, end, now time.Time, loc *time.Location) []Occurrence {
	if len(blocks) == 0 {
		return nil
	}
	if end.After(now) {
		end = now
	}

	startDay := dayOf(start, loc)
	endDay := dayOf(end, loc)

	var out []Occurrence
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		block, ok := FindBlockForDay(blocks, d.Weekday())
		if !ok {
			continue
		}
		if block.Start.At(d, loc).After(now) {
			continue
		}
		out = append(out, Occurrence{Date: d, Block: block})
	}
	return out
}

// dayOf truncates an instant to local midnight in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// DayOf is the exported local-midnight truncation used by callers that need
// day boundaries in the reference zone.
func DayOf(t time.Time, loc *time.Location) time.Time {
	return dayOf(t, loc)
}

// ParseDays parses a comma-separated list of weekday names
// ("monday,wednesday") into weekdays. Names are case-insensitive and
// surrounding whitespace is ignored.
func ParseDays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDay, name)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, ErrNoDays
	}
	return days, nil
}

// FormatDays renders weekdays back to the comma-separated storage form.
func FormatDays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, strings.ToLower(d.String()))
	}
	return strings.Join(names, ",")
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
