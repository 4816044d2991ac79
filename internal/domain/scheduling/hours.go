package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WeekdayOf derives the 0=Sunday..6=Saturday weekday for a "YYYY-MM-DD"
// date. The date is interpreted at UTC midnight so the result does not
// depend on the server's local zone.
func WeekdayOf(dateISO string) (int, error) {
	d, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", dateISO, err)
	}
	return int(d.UTC().Weekday()), nil
}

// ToMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds, when present, are ignored; Postgres time columns cast to text
// carry them.
func ToMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// MinutesToClock is the zero-padded inverse of ToMinutes, used for slot
// labels and messages.
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. The strict inequalities matter: a slot ending
// exactly when another begins is not a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// BuildOpenWindows turns one weekday's working-hour rules and break rules
// into a sorted, non-overlapping, maximally merged list of open intervals:
// rules flagged closed or with close <= open are dropped, every break is
// subtracted from every interval, and adjacent or overlapping results are
// merged.
func BuildOpenWindows(rules []WorkingHourRule, breaks []BreakRule) []OpenInterval {
	var windows []OpenInterval
	for _, r := range rules {
		if !r.IsOpen {
			continue
		}
		open, err := ToMinutes(r.OpenTime)
		if err != nil {
			continue
		}
		close, err := ToMinutes(r.CloseTime)
		if err != nil || close <= open {
			continue
		}
		windows = append(windows, OpenInterval{Start: open, End: close})
	}

	for _, b := range breaks {
		bStart, err := ToMinutes(b.StartTime)
		if err != nil {
			continue
		}
		bEnd, err := ToMinutes(b.EndTime)
		if err != nil || bEnd <= bStart {
			continue
		}
		var next []OpenInterval
		for _, w := range windows {
			next = append(next, subtract(w, bStart, bEnd)...)
		}
		windows = next
	}

	return mergeIntervals(windows)
}

// subtract removes [bStart, bEnd) from w, yielding zero, one, or two
// intervals.
func subtract(w OpenInterval, bStart, bEnd int) []OpenInterval {
	if !Overlaps(w.Start, w.End, bStart, bEnd) {
		return []OpenInterval{w}
	}
	if bStart <= w.Start && bEnd >= w.End {
		return nil
	}
	if bStart <= w.Start {
		return []OpenInterval{{Start: bEnd, End: w.End}}
	}
	if bEnd >= w.End {
		return []OpenInterval{{Start: w.Start, End: bStart}}
	}
	return []OpenInterval{
		{Start: w.Start, End: bStart},
		{Start: bEnd, End: w.End},
	}
}

func mergeIntervals(windows []OpenInterval) []OpenInterval {
	if len(windows) == 0 {
		return nil
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})

	merged := []OpenInterval{windows[0]}
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
