package reconcile

import (
	"sort"
	"time"

	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// Reconciler runs the full pipeline over an in-memory batch of punches:
// identity matching, window resolution, duration derivation and
// classification. It performs no I/O; collaborators hand it already
// materialized snapshots.
type Reconciler struct {
	matcher           *Matcher
	profiles          map[string]*ScheduleProfile
	defaultGraceLate  int
	defaultGraceEarly int
	logger            *logger.Logger
}

// NewReconciler creates a reconciler over a directory snapshot and a map of
// schedule profiles keyed by employee ID. The grace defaults apply when a
// profile does not set its own.
func NewReconciler(directory []Employee, profiles map[string]*ScheduleProfile, defaultGraceLate, defaultGraceEarly int, log *logger.Logger) *Reconciler {
	return &Reconciler{
		matcher:           NewMatcher(directory, log),
		profiles:          profiles,
		defaultGraceLate:  defaultGraceLate,
		defaultGraceEarly: defaultGraceEarly,
		logger:            log,
	}
}

// ReloadDirectory replaces the directory snapshot and invalidates the
// identity cache
func (r *Reconciler) ReloadDirectory(directory []Employee) {
	r.matcher.Reload(directory)
}

// ReloadProfiles replaces the schedule profile snapshot
func (r *Reconciler) ReloadProfiles(profiles map[string]*ScheduleProfile) {
	r.profiles = profiles
}

// Run classifies every punch in the batch. Every punch gets a status;
// unmatched identities and missing profiles degrade to unassigned instead
// of failing the batch.
func (r *Reconciler) Run(punches []RawPunch) []ClassifiedPunch {
	// Group punches per resolved employee so duration derivation can see
	// the employee's full stream, not just one day.
	perEmployee := make(map[string][]RawPunch)
	for _, p := range punches {
		perEmployee[r.employeeKey(p)] = append(perEmployee[r.employeeKey(p)], p)
	}
	for key := range perEmployee {
		stream := perEmployee[key]
		sort.Slice(stream, func(i, j int) bool {
			return stream[i].Timestamp.Before(stream[j].Timestamp)
		})
	}

	classified := make([]ClassifiedPunch, 0, len(punches))
	for _, p := range punches {
		classified = append(classified, r.classifyOne(p, perEmployee[r.employeeKey(p)]))
	}
	return classified
}

func (r *Reconciler) classifyOne(p RawPunch, stream []RawPunch) ClassifiedPunch {
	out := ClassifiedPunch{RawPunch: p}

	out.Employee = r.matcher.Match(p.EmployeeIdentifier)
	if out.Employee == nil {
		r.logger.Warn().
			Str("identifier", p.EmployeeIdentifier).
			Time("timestamp", p.Timestamp).
			Msg("punch identifier did not resolve to any employee")
	}

	var profile *ScheduleProfile
	if out.Employee != nil {
		profile = r.profiles[out.Employee.ID]
	}
	out.Window = ResolveWindow(profile, p.Timestamp.Weekday())

	graceLate, graceEarly := r.defaultGraceLate, r.defaultGraceEarly
	if profile != nil {
		graceLate = profile.GraceLateMinutes
		graceEarly = profile.GraceEarlyMinutes
	}

	c := Classify(p, out.Window, graceLate, graceEarly)
	out.Status = c.Status
	out.DeviationMinutes = c.DeviationMinutes
	out.Message = c.Message

	// Durations are derived for plain check-ins only; check-outs are
	// consumed as the other side of a check-in's duration.
	if p.Kind == PunchCheckIn {
		duration, err := ComputeDuration(p.Timestamp, r.sameDayCheckOut(p, stream), stream)
		if err != nil {
			r.logger.Warn().
				Str("identifier", p.EmployeeIdentifier).
				Time("check_in", p.Timestamp).
				Err(err).
				Msg("invalid check-out pairing, no duration derived")
		}
		out.Duration = duration
	}

	return out
}

// sameDayCheckOut finds the check-out paired with a check-in on the same
// calendar day. The earliest check-out at or after the check-in wins; if
// none exists, the earliest check-out of the day is returned so the
// wrong-date-stamp reinterpretation in ComputeDuration can see it.
func (r *Reconciler) sameDayCheckOut(checkIn RawPunch, stream []RawPunch) *time.Time {
	var firstOfDay *time.Time
	for i := range stream {
		p := stream[i]
		if p.Kind != PunchCheckOut || !sameDate(p.Timestamp, checkIn.Timestamp) {
			continue
		}
		if firstOfDay == nil {
			t := p.Timestamp
			firstOfDay = &t
		}
		if p.Timestamp.After(checkIn.Timestamp) {
			t := p.Timestamp
			return &t
		}
	}
	return firstOfDay
}

func (r *Reconciler) employeeKey(p RawPunch) string {
	if emp := r.matcher.Match(p.EmployeeIdentifier); emp != nil {
		return emp.ID
	}
	return normalize(p.EmployeeIdentifier)
}
