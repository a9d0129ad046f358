package reconcile

import "time"

// Default working hours applied when a profile has no explicit times
var (
	defaultStart = ClockTime{Hour: 9}
	defaultEnd   = ClockTime{Hour: 17}
)

// ResolveWindow returns the schedule window applicable to the given weekday,
// or nil when no profile exists. The function is pure; callers may invoke it
// per punch without caching.
//
// Flexible profiles are searched in pattern order and the first pattern
// claiming the weekday wins. Overlapping patterns are rejected at profile
// save time (see ValidatePatterns), so for well-formed profiles at most one
// pattern can match; first-match-wins is the documented tie-break for
// legacy data that predates the validation.
func ResolveWindow(profile *ScheduleProfile, day time.Weekday) *ScheduleWindow {
	if profile == nil {
		return nil
	}

	switch profile.Type {
	case ScheduleOnCall:
		// On-call staff have no fixed hours; every punch is on time.
		return &ScheduleWindow{
			Type:  ScheduleOnCall,
			Start: ClockTime{Hour: 0, Minute: 0},
			End:   ClockTime{Hour: 23, Minute: 59},
		}

	case ScheduleFlexible:
		for _, pattern := range profile.Patterns {
			for _, d := range pattern.Days {
				if d == day {
					return &ScheduleWindow{
						Type:  ScheduleFlexible,
						Start: pattern.Start,
						End:   pattern.End,
					}
				}
			}
		}
		// No pattern claims this weekday: fall through to standard hours.
		return standardWindow(profile)

	default:
		return standardWindow(profile)
	}
}

func standardWindow(profile *ScheduleProfile) *ScheduleWindow {
	w := &ScheduleWindow{
		Type:  ScheduleStandard,
		Start: defaultStart,
		End:   defaultEnd,
	}
	if profile.Start != nil {
		w.Start = *profile.Start
	}
	if profile.End != nil {
		w.End = *profile.End
	}
	return w
}

// ValidatePatterns checks that no two patterns of a flexible profile claim
// the same weekday. Returns the offending weekdays, if any.
func ValidatePatterns(patterns []SchedulePattern) []time.Weekday {
	seen := make(map[time.Weekday]bool)
	var overlapping []time.Weekday

	for _, pattern := range patterns {
		for _, d := range pattern.Days {
			if seen[d] {
				overlapping = append(overlapping, d)
				continue
			}
			seen[d] = true
		}
	}

	return overlapping
}
