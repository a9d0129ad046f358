package reconcile

import "fmt"

// Classification is the status assigned to a single punch together with the
// magnitude of its deviation from the schedule window and an audit message
// stating which grace threshold, if any, applied.
type Classification struct {
	Status           AttendanceStatus `json:"status"`
	DeviationMinutes int              `json:"deviation_minutes"`
	Message          string           `json:"message"`
}

// Classify classifies one punch against a resolved schedule window. The
// function is state-free; grace thresholds are passed per call so adjusted
// settings take effect on the next pass without invalidation.
func Classify(punch RawPunch, window *ScheduleWindow, graceLateMinutes, graceEarlyMinutes int) Classification {
	if window == nil {
		return Classification{
			Status:  StatusUnassigned,
			Message: "no schedule profile matched; punch left unassigned",
		}
	}

	if window.Type == ScheduleOnCall {
		return Classification{
			Status:  StatusOnTime,
			Message: "on-call schedule has no fixed hours; always on time",
		}
	}

	if punch.Kind.IsDeparture() {
		return classifyDeparture(punch, window, graceEarlyMinutes)
	}
	return classifyArrival(punch, window, graceLateMinutes)
}

func classifyArrival(punch RawPunch, window *ScheduleWindow, graceLateMinutes int) Classification {
	deviation := minuteOfDay(punch.Timestamp) - window.Start.MinuteOfDay()

	switch {
	case deviation <= 0:
		return Classification{
			Status:           StatusOnTime,
			DeviationMinutes: deviation,
			Message:          fmt.Sprintf("arrived %d min before scheduled start %s", -deviation, window.Start),
		}
	case deviation <= graceLateMinutes:
		return Classification{
			Status:           StatusOnTime,
			DeviationMinutes: deviation,
			Message:          fmt.Sprintf("arrived %d min after scheduled start %s, within %d min grace", deviation, window.Start, graceLateMinutes),
		}
	default:
		return Classification{
			Status:           StatusLate,
			DeviationMinutes: deviation,
			Message:          fmt.Sprintf("late by %d min against scheduled start %s, exceeds %d min grace", deviation, window.Start, graceLateMinutes),
		}
	}
}

func classifyDeparture(punch RawPunch, window *ScheduleWindow, graceEarlyMinutes int) Classification {
	deviation := minuteOfDay(punch.Timestamp) - window.End.MinuteOfDay()

	switch {
	// Extra time takes priority over the early/on-time branches regardless
	// of the grace value.
	case deviation > 0:
		return Classification{
			Status:           StatusExtraTime,
			DeviationMinutes: deviation,
			Message:          fmt.Sprintf("worked %d min past scheduled end %s", deviation, window.End),
		}
	case deviation == 0:
		return Classification{
			Status:  StatusOnTime,
			Message: fmt.Sprintf("left exactly at scheduled end %s", window.End),
		}
	case -deviation <= graceEarlyMinutes:
		return Classification{
			Status:           StatusOnTime,
			DeviationMinutes: deviation,
			Message:          fmt.Sprintf("left %d min before scheduled end %s, within %d min grace", -deviation, window.End, graceEarlyMinutes),
		}
	default:
		return Classification{
			Status:           StatusEarly,
			DeviationMinutes: -deviation,
			Message:          fmt.Sprintf("left %d min before scheduled end %s, exceeds %d min grace", -deviation, window.End, graceEarlyMinutes),
		}
	}
}
