package reconcile

// Aggregate reduces a set of classified punches into summary totals. The
// function holds no state between calls; running it on a filtered subset
// considers only that subset.
//
// Late and early totals are recomputed from the resolved windows rather
// than read from the classifier's cached deviation, so reports stay correct
// when grace periods are adjusted between classification and reporting.
func Aggregate(punches []ClassifiedPunch) AttendanceSummary {
	var (
		workedMinutes, workedCount int
		lateMinutes, lateCount     int
		earlyMinutes, earlyCount   int
		extraMinutes, extraCount   int
	)

	for _, p := range punches {
		if p.Kind == PunchCheckIn && p.Duration != nil {
			workedMinutes += p.Duration.TotalMinutes
			workedCount++
		}

		switch p.Status {
		case StatusLate:
			if p.Kind.IsArrival() && p.Window != nil {
				if late := minuteOfDay(p.Timestamp) - p.Window.Start.MinuteOfDay(); late > 0 {
					lateMinutes += late
				}
				lateCount++
			}
		case StatusEarly:
			if p.Kind.IsDeparture() && p.Window != nil {
				if early := p.Window.End.MinuteOfDay() - minuteOfDay(p.Timestamp); early > 0 {
					earlyMinutes += early
				}
				earlyCount++
			}
		case StatusExtraTime:
			if p.Kind.IsDeparture() {
				extraMinutes += p.DeviationMinutes
				extraCount++
			}
		}
	}

	return AttendanceSummary{
		Worked: newMinuteTotal(workedMinutes, workedCount),
		Late:   newMinuteTotal(lateMinutes, lateCount),
		Early:  newMinuteTotal(earlyMinutes, earlyCount),
		Extra:  newMinuteTotal(extraMinutes, extraCount),
	}
}
