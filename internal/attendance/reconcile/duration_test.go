package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestComputeDuration_SameDay(t *testing.T) {
	checkIn := ts(t, "2024-01-01T09:00:00Z")
	checkOut := ts(t, "2024-01-01T17:30:00Z")

	d, err := ComputeDuration(checkIn, &checkOut, nil)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 8, d.Hours)
	assert.Equal(t, 30, d.Minutes)
	assert.Equal(t, 510, d.TotalMinutes)
	assert.False(t, d.CrossesMidnight)
	assert.Equal(t, checkOut, d.CheckoutAt)
}

func TestComputeDuration_CrossDay(t *testing.T) {
	checkIn := ts(t, "2024-01-01T22:00:00Z")
	stream := []RawPunch{
		{EmployeeIdentifier: "101", Timestamp: checkIn, Kind: PunchCheckIn},
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T06:00:00Z"), Kind: PunchCheckOut},
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T14:00:00Z"), Kind: PunchCheckIn},
	}

	d, err := ComputeDuration(checkIn, nil, stream)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 8, d.Hours)
	assert.Equal(t, 0, d.Minutes)
	assert.Equal(t, 480, d.TotalMinutes)
	assert.True(t, d.CrossesMidnight)
}

func TestComputeDuration_CrossDayRejectedWhenFirstPunchIsNotCheckOut(t *testing.T) {
	checkIn := ts(t, "2024-01-01T22:00:00Z")
	stream := []RawPunch{
		{EmployeeIdentifier: "101", Timestamp: checkIn, Kind: PunchCheckIn},
		// First action the next day is another check-in: shift stays open
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T08:00:00Z"), Kind: PunchCheckIn},
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T16:00:00Z"), Kind: PunchCheckOut},
	}

	d, err := ComputeDuration(checkIn, nil, stream)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestComputeDuration_NoNextDayPunches(t *testing.T) {
	checkIn := ts(t, "2024-01-01T22:00:00Z")
	stream := []RawPunch{
		{EmployeeIdentifier: "101", Timestamp: checkIn, Kind: PunchCheckIn},
		// Next punch is two days later, outside the cross-day window
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-03T06:00:00Z"), Kind: PunchCheckOut},
	}

	d, err := ComputeDuration(checkIn, nil, stream)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestComputeDuration_WrongDateStampReinterpreted(t *testing.T) {
	// Overnight shift recorded with the check-in's date on both punches:
	// check-out clock time is earlier, so it is shifted to the next day.
	checkIn := ts(t, "2024-01-01T22:00:00Z")
	checkOut := ts(t, "2024-01-01T06:00:00Z")

	d, err := ComputeDuration(checkIn, &checkOut, nil)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 480, d.TotalMinutes)
	assert.True(t, d.CrossesMidnight)
	assert.Equal(t, ts(t, "2024-01-02T06:00:00Z"), d.CheckoutAt)
	assert.GreaterOrEqual(t, d.TotalMinutes, 0)
}

func TestComputeDuration_CheckOutAtCheckInIsInvalid(t *testing.T) {
	checkIn := ts(t, "2024-01-01T09:00:00Z")
	checkOut := checkIn

	d, err := ComputeDuration(checkIn, &checkOut, nil)
	assert.ErrorIs(t, err, ErrInvalidCheckout)
	assert.Nil(t, d)
}

func TestComputeDuration_CheckOutOnEarlierDateIsInvalid(t *testing.T) {
	checkIn := ts(t, "2024-01-02T09:00:00Z")
	checkOut := ts(t, "2024-01-01T17:00:00Z")

	d, err := ComputeDuration(checkIn, &checkOut, nil)
	assert.ErrorIs(t, err, ErrInvalidCheckout)
	assert.Nil(t, d)
}

func TestComputeDuration_NextDayPunchesUnsorted(t *testing.T) {
	// Stream order must not matter; punches are sorted before the
	// first-of-day rule is applied.
	checkIn := ts(t, "2024-01-01T23:00:00Z")
	stream := []RawPunch{
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T15:00:00Z"), Kind: PunchCheckIn},
		{EmployeeIdentifier: "101", Timestamp: ts(t, "2024-01-02T07:00:00Z"), Kind: PunchCheckOut},
		{EmployeeIdentifier: "101", Timestamp: checkIn, Kind: PunchCheckIn},
	}

	d, err := ComputeDuration(checkIn, nil, stream)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 480, d.TotalMinutes)
	assert.True(t, d.CrossesMidnight)
}
