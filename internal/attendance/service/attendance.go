package service

import (
	"context"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// DirectorySource provides the employee directory snapshot
type DirectorySource interface {
	Directory(ctx context.Context) ([]reconcile.Employee, error)
}

// ProfileSource provides schedule profiles keyed by employee ID
type ProfileSource interface {
	MapByEmployee(ctx context.Context) (map[string]*reconcile.ScheduleProfile, error)
}

// PunchSource provides stored punches
type PunchSource interface {
	SavePunches(ctx context.Context, punches []reconcile.RawPunch) (int, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]reconcile.RawPunch, error)
}

// EventPublisher publishes attendance events
type EventPublisher interface {
	PublishPunchIngested(ctx context.Context, punch reconcile.RawPunch)
	PublishBatchReconciled(ctx context.Context, punchCount, unassignedCount int, from, to time.Time)
}

// ReportFilter bounds a reconciliation pass. EmployeeID, when set, narrows
// the classified output to one resolved employee.
type ReportFilter struct {
	From       time.Time
	To         time.Time
	EmployeeID string
}

// Report is one reconciliation pass over the stored punches in a range
type Report struct {
	Punches []reconcile.ClassifiedPunch `json:"punches"`
	Summary reconcile.AttendanceSummary `json:"summary"`
}

// AttendanceService runs reconciliation passes over stored punches. Every
// pass loads fresh snapshots, so repeated calls over unchanged inputs yield
// identical reports.
type AttendanceService struct {
	employees DirectorySource
	profiles  ProfileSource
	punches   PunchSource
	publisher EventPublisher
	cfg       *config.AttendanceConfig
	logger    *logger.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	employees DirectorySource,
	profiles ProfileSource,
	punches PunchSource,
	publisher EventPublisher,
	cfg *config.AttendanceConfig,
	log *logger.Logger,
) *AttendanceService {
	return &AttendanceService{
		employees: employees,
		profiles:  profiles,
		punches:   punches,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

// IngestPunches stores a batch of normalized punches and publishes an event
// for each newly stored one. Duplicates are silently skipped by the store,
// so a replayed device log does not produce duplicate events.
func (s *AttendanceService) IngestPunches(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	stored, err := s.punches.SavePunches(ctx, punches)
	if err != nil {
		return stored, errors.Upstream("punch store", err)
	}

	if stored > 0 {
		for _, p := range punches {
			s.publisher.PublishPunchIngested(ctx, p)
		}
	}

	s.logger.Info().
		Int("submitted", len(punches)).
		Int("stored", stored).
		Msg("punch batch ingested")

	return stored, nil
}

// SavePunches lets the service stand in as the device poller's store
func (s *AttendanceService) SavePunches(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	return s.IngestPunches(ctx, punches)
}

// Reconcile runs a full pass over the stored punches in the filter range.
// A failure to load any collaborator snapshot aborts the pass; a report over
// partial inputs would silently misclassify.
func (s *AttendanceService) Reconcile(ctx context.Context, filter ReportFilter) (*Report, error) {
	directory, err := s.employees.Directory(ctx)
	if err != nil {
		return nil, errors.Upstream("employee directory", err)
	}

	profiles, err := s.profiles.MapByEmployee(ctx)
	if err != nil {
		return nil, errors.Upstream("schedule profiles", err)
	}

	punches, err := s.punches.ListByRange(ctx, filter.From, filter.To)
	if err != nil {
		return nil, errors.Upstream("punch store", err)
	}

	reconciler := reconcile.NewReconciler(directory, profiles,
		s.cfg.DefaultGraceLateMinutes, s.cfg.DefaultGraceEarlyMinutes, s.logger)
	classified := reconciler.Run(punches)

	unassigned := 0
	for _, p := range classified {
		if p.Status == reconcile.StatusUnassigned {
			unassigned++
		}
	}
	s.publisher.PublishBatchReconciled(ctx, len(classified), unassigned, filter.From, filter.To)

	if filter.EmployeeID != "" {
		classified = filterByEmployee(classified, filter.EmployeeID)
	}

	return &Report{
		Punches: classified,
		Summary: reconcile.Aggregate(classified),
	}, nil
}

// Summary runs a reconciliation pass and returns only the aggregate totals
func (s *AttendanceService) Summary(ctx context.Context, filter ReportFilter) (*reconcile.AttendanceSummary, error) {
	report, err := s.Reconcile(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &report.Summary, nil
}

func filterByEmployee(punches []reconcile.ClassifiedPunch, employeeID string) []reconcile.ClassifiedPunch {
	out := make([]reconcile.ClassifiedPunch, 0, len(punches))
	for _, p := range punches {
		if p.Employee != nil && p.Employee.ID == employeeID {
			out = append(out, p)
		}
	}
	return out
}
