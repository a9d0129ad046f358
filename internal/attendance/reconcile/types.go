package reconcile

import (
	"fmt"
	"time"
)

// ScheduleType identifies how an employee's working hours are defined
type ScheduleType string

const (
	ScheduleStandard ScheduleType = "standard"
	ScheduleFlexible ScheduleType = "flexible"
	ScheduleOnCall   ScheduleType = "on_call"
)

// PunchKind is the event kind recorded by the biometric terminal
type PunchKind string

const (
	PunchCheckIn     PunchKind = "check_in"
	PunchCheckOut    PunchKind = "check_out"
	PunchBreakIn     PunchKind = "break_in"
	PunchBreakOut    PunchKind = "break_out"
	PunchOvertimeIn  PunchKind = "overtime_in"
	PunchOvertimeOut PunchKind = "overtime_out"
)

// IsArrival reports whether the kind marks the start of a work segment.
// Break and overtime punches are classified with the same arrival/departure
// rules as plain check-ins and check-outs.
func (k PunchKind) IsArrival() bool {
	switch k {
	case PunchCheckIn, PunchBreakIn, PunchOvertimeIn:
		return true
	}
	return false
}

// IsDeparture reports whether the kind marks the end of a work segment
func (k PunchKind) IsDeparture() bool {
	switch k {
	case PunchCheckOut, PunchBreakOut, PunchOvertimeOut:
		return true
	}
	return false
}

// AttendanceStatus is the compliance classification of a single punch
type AttendanceStatus string

const (
	StatusOnTime     AttendanceStatus = "on_time"
	StatusLate       AttendanceStatus = "late"
	StatusEarly      AttendanceStatus = "early"
	StatusExtraTime  AttendanceStatus = "extra_time"
	StatusUnassigned AttendanceStatus = "unassigned"
)

// Employee is a directory record. The engine only reads it; the directory
// collaborator owns its lifecycle.
type Employee struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DeviceUserID   string   `json:"device_user_id"`
	AlternateNames []string `json:"alternate_names,omitempty"`
}

// SchedulePattern assigns a time window to a set of weekdays within a
// flexible profile
type SchedulePattern struct {
	Days  []time.Weekday `json:"days"`
	Start ClockTime      `json:"start"`
	End   ClockTime      `json:"end"`
}

// ScheduleProfile describes an employee's expected working hours
type ScheduleProfile struct {
	ID                string            `json:"id"`
	Type              ScheduleType      `json:"type"`
	GraceLateMinutes  int               `json:"grace_late_minutes"`
	GraceEarlyMinutes int               `json:"grace_early_minutes"`
	Start             *ClockTime        `json:"start,omitempty"`
	End               *ClockTime        `json:"end,omitempty"`
	Patterns          []SchedulePattern `json:"patterns,omitempty"`
}

// ScheduleWindow is the resolved start/end window for one calendar day
type ScheduleWindow struct {
	Type  ScheduleType `json:"type"`
	Start ClockTime    `json:"start"`
	End   ClockTime    `json:"end"`
}

// RawPunch is a single event from the terminal, already normalized to the
// deployment time zone by the ingestion adapter
type RawPunch struct {
	EmployeeIdentifier string    `json:"employee_identifier"`
	Timestamp          time.Time `json:"timestamp"`
	Kind               PunchKind `json:"kind"`
}

// WorkDuration is the elapsed work time derived for a check-in punch.
// It is recomputed on every pass and never persisted.
type WorkDuration struct {
	Hours           int       `json:"hours"`
	Minutes         int       `json:"minutes"`
	TotalMinutes    int       `json:"total_minutes"`
	CrossesMidnight bool      `json:"crosses_midnight"`
	CheckoutAt      time.Time `json:"checkout_at"`
}

// ClassifiedPunch is a raw punch with its resolved employee, window, status
// and derived duration attached
type ClassifiedPunch struct {
	RawPunch
	Employee         *Employee        `json:"employee,omitempty"`
	Window           *ScheduleWindow  `json:"window,omitempty"`
	Status           AttendanceStatus `json:"status"`
	DeviationMinutes int              `json:"deviation_minutes"`
	Message          string           `json:"message"`
	Duration         *WorkDuration    `json:"duration,omitempty"`
}

// MinuteTotal is an aggregated minute sum with its occurrence count
type MinuteTotal struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
	Count        int `json:"count"`
}

func newMinuteTotal(totalMinutes, count int) MinuteTotal {
	return MinuteTotal{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
		Count:        count,
	}
}

// AttendanceSummary is the aggregated view over a set of classified punches
type AttendanceSummary struct {
	Worked MinuteTotal `json:"worked"`
	Late   MinuteTotal `json:"late"`
	Early  MinuteTotal `json:"early"`
	Extra  MinuteTotal `json:"extra"`
}

// ClockTime is a wall-clock time of day without a date
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseClockTime parses a "HH:MM" string
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return c, nil
}

// MustClockTime parses a "HH:MM" string and panics on failure. For fixtures
// and defaults known at compile time.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MinuteOfDay returns minutes since midnight
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// String formats the time as "HH:MM"
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// minuteOfDay returns minutes since midnight for a timestamp
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// sameDate reports whether two timestamps fall on the same calendar day
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
