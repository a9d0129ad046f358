package reconcile

import (
	"errors"
	"sort"
	"time"
)

// ErrInvalidCheckout is returned when a same-day check-out does not follow
// its check-in and cannot be reinterpreted as a cross-day shift.
var ErrInvalidCheckout = errors.New("check-out does not follow check-in")

// ComputeDuration derives the elapsed work duration for a check-in punch.
//
// When a same-day check-out exists strictly after the check-in, the duration
// is the plain elapsed time. A same-day check-out whose clock time is
// earlier than the check-in's is treated as a shift recorded with a wrong
// date stamp: the check-out is reinterpreted as occurring on the following
// day, so the duration gains 24 hours and is never negative. A check-out at
// the exact check-in instant is invalid input and yields ErrInvalidCheckout.
//
// When no same-day check-out exists, the punches of the immediately
// following calendar day are scanned in ascending order. The shift only
// closes if the very first punch of that day is a check-out; any other kind
// first (including another check-in) leaves the shift open and no duration
// is fabricated.
//
// A nil, nil return means the shift is open or incomplete.
func ComputeDuration(checkIn time.Time, sameDayCheckOut *time.Time, allPunches []RawPunch) (*WorkDuration, error) {
	if sameDayCheckOut != nil {
		return sameDayDuration(checkIn, *sameDayCheckOut)
	}
	return nextDayDuration(checkIn, allPunches)
}

func sameDayDuration(checkIn, checkOut time.Time) (*WorkDuration, error) {
	if checkOut.After(checkIn) {
		total := int(checkOut.Sub(checkIn).Minutes())
		return newDuration(total, false, checkOut), nil
	}

	if checkOut.Equal(checkIn) {
		return nil, ErrInvalidCheckout
	}

	// Check-out recorded with the check-in's date but an earlier clock
	// time: the terminal stamped the wrong date on an overnight shift.
	// Reinterpret the check-out as next-day before computing.
	if sameDate(checkIn, checkOut) && minuteOfDay(checkOut) < minuteOfDay(checkIn) {
		shifted := checkOut.AddDate(0, 0, 1)
		total := int(shifted.Sub(checkIn).Minutes())
		return newDuration(total, true, shifted), nil
	}

	return nil, ErrInvalidCheckout
}

func nextDayDuration(checkIn time.Time, allPunches []RawPunch) (*WorkDuration, error) {
	nextDay := checkIn.AddDate(0, 0, 1)

	var following []RawPunch
	for _, p := range allPunches {
		if sameDate(p.Timestamp, nextDay) {
			following = append(following, p)
		}
	}
	if len(following) == 0 {
		return nil, nil
	}

	sort.Slice(following, func(i, j int) bool {
		return following[i].Timestamp.Before(following[j].Timestamp)
	})

	first := following[0]
	if first.Kind != PunchCheckOut {
		// The employee's first action the next day was not a check-out,
		// so the overnight shift never closed.
		return nil, nil
	}

	total := int(first.Timestamp.Sub(checkIn).Minutes())
	if total < 0 {
		return nil, ErrInvalidCheckout
	}
	return newDuration(total, true, first.Timestamp), nil
}

func newDuration(totalMinutes int, crossesMidnight bool, checkoutAt time.Time) *WorkDuration {
	return &WorkDuration{
		Hours:           totalMinutes / 60,
		Minutes:         totalMinutes % 60,
		TotalMinutes:    totalMinutes,
		CrossesMidnight: crossesMidnight,
		CheckoutAt:      checkoutAt,
	}
}
