package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifiedFixture(t *testing.T) []ClassifiedPunch {
	t.Helper()
	window := standardTestWindow()

	return []ClassifiedPunch{
		{
			RawPunch: punchAt(t, "2024-01-01T09:20:00Z", PunchCheckIn),
			Window:   window,
			Status:   StatusLate,
			Duration: &WorkDuration{Hours: 7, Minutes: 40, TotalMinutes: 460},
		},
		{
			RawPunch: punchAt(t, "2024-01-01T17:00:00Z", PunchCheckOut),
			Window:   window,
			Status:   StatusOnTime,
		},
		{
			RawPunch: punchAt(t, "2024-01-02T09:00:00Z", PunchCheckIn),
			Window:   window,
			Status:   StatusOnTime,
			Duration: &WorkDuration{Hours: 8, Minutes: 0, TotalMinutes: 480},
		},
		{
			RawPunch:         punchAt(t, "2024-01-02T17:45:00Z", PunchCheckOut),
			Window:           window,
			Status:           StatusExtraTime,
			DeviationMinutes: 45,
		},
		{
			RawPunch: punchAt(t, "2024-01-03T16:20:00Z", PunchCheckOut),
			Window:   window,
			Status:   StatusEarly,
		},
		{
			RawPunch: punchAt(t, "2024-01-03T08:00:00Z", PunchCheckIn),
			Status:   StatusUnassigned,
		},
	}
}

func TestAggregate(t *testing.T) {
	summary := Aggregate(classifiedFixture(t))

	// Worked: 460 + 480 over two check-ins with durations
	assert.Equal(t, 940, summary.Worked.TotalMinutes)
	assert.Equal(t, 15, summary.Worked.Hours)
	assert.Equal(t, 40, summary.Worked.Minutes)
	assert.Equal(t, 2, summary.Worked.Count)

	// Late: recomputed from the window, 09:20 against 09:00
	assert.Equal(t, 20, summary.Late.TotalMinutes)
	assert.Equal(t, 1, summary.Late.Count)

	// Early: recomputed from the window, 16:20 against 17:00
	assert.Equal(t, 40, summary.Early.TotalMinutes)
	assert.Equal(t, 1, summary.Early.Count)

	// Extra: classifier deviation is authoritative for overtime
	assert.Equal(t, 45, summary.Extra.TotalMinutes)
	assert.Equal(t, 1, summary.Extra.Count)
}

func TestAggregate_Idempotent(t *testing.T) {
	punches := classifiedFixture(t)

	first := Aggregate(punches)
	second := Aggregate(punches)

	assert.Equal(t, first, second)
}

func TestAggregate_SubsetStability(t *testing.T) {
	punches := classifiedFixture(t)

	// Aggregating a subset must only consider that subset
	subset := Aggregate(punches[:2])
	assert.Equal(t, 460, subset.Worked.TotalMinutes)
	assert.Equal(t, 1, subset.Worked.Count)
	assert.Equal(t, 20, subset.Late.TotalMinutes)
	assert.Equal(t, 0, subset.Extra.Count)
}

func TestAggregate_LateRecomputedFromWindow(t *testing.T) {
	// The classifier's cached deviation is deliberately ignored for late
	// totals; the window is the source of truth.
	window := standardTestWindow()
	punches := []ClassifiedPunch{
		{
			RawPunch:         punchAt(t, "2024-01-01T09:30:00Z", PunchCheckIn),
			Window:           window,
			Status:           StatusLate,
			DeviationMinutes: 999, // stale value, must not be used
		},
	}

	summary := Aggregate(punches)
	assert.Equal(t, 30, summary.Late.TotalMinutes)
}

func TestAggregate_Empty(t *testing.T) {
	summary := Aggregate(nil)
	assert.Equal(t, 0, summary.Worked.TotalMinutes)
	assert.Equal(t, 0, summary.Worked.Count)
	assert.Equal(t, 0, summary.Late.TotalMinutes)
	assert.Equal(t, 0, summary.Early.TotalMinutes)
	assert.Equal(t, 0, summary.Extra.TotalMinutes)
}
