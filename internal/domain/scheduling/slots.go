package scheduling

import "strings"

// GenerateSlots walks each open interval at a stride equal to the slot
// duration and emits every minute-of-day at which a slot of that duration
// fits entirely inside the interval. Slots never span two intervals.
func GenerateSlots(windows []OpenInterval, duration int) []int {
	if duration <= 0 {
		return nil
	}
	var slots []int
	for _, w := range windows {
		for t := w.Start; t+duration <= w.End; t += duration {
			slots = append(slots, t)
		}
	}
	return slots
}

// FilterConflicts drops candidate slots whose [start, start+duration) span
// overlaps any existing non-cancelled appointment. Each appointment's own
// duration is resolved from the service duration map the same way as the
// requested service, defaulting identically.
func FilterConflicts(candidates []int, duration int, appts []Appointment, durations map[string]int, defaultDuration int) []int {
	busy := busyIntervals(appts, durations, defaultDuration)

	var free []int
	for _, start := range candidates {
		conflict := false
		for _, b := range busy {
			if Overlaps(start, start+duration, b.Start, b.End) {
				conflict = true
				break
			}
		}
		if !conflict {
			free = append(free, start)
		}
	}
	return free
}

func busyIntervals(appts []Appointment, durations map[string]int, defaultDuration int) []OpenInterval {
	var busy []OpenInterval
	for _, a := range appts {
		if a.Status == StatusCancelled {
			continue
		}
		start := a.StartTime.UTC().Hour()*60 + a.StartTime.UTC().Minute()
		busy = append(busy, OpenInterval{
			Start: start,
			End:   start + resolveDuration(a.ServiceName, durations, defaultDuration),
		})
	}
	return busy
}

// resolveDuration looks up a service's duration by case-insensitive name;
// unknown or empty service names fall back to the default.
func resolveDuration(serviceName *string, durations map[string]int, defaultDuration int) int {
	if serviceName == nil {
		return defaultDuration
	}
	name := strings.ToLower(strings.TrimSpace(*serviceName))
	if name == "" {
		return defaultDuration
	}
	if d, ok := durations[name]; ok && d > 0 {
		return d
	}
	return defaultDuration
}
