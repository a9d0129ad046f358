package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	apperrors "github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

type fakeDirectory struct {
	employees []reconcile.Employee
	err       error
}

func (f *fakeDirectory) Directory(ctx context.Context) ([]reconcile.Employee, error) {
	return f.employees, f.err
}

type fakeProfiles struct {
	profiles map[string]*reconcile.ScheduleProfile
	err      error
}

func (f *fakeProfiles) MapByEmployee(ctx context.Context) (map[string]*reconcile.ScheduleProfile, error) {
	return f.profiles, f.err
}

type fakePunches struct {
	stored  []reconcile.RawPunch
	listed  []reconcile.RawPunch
	saveErr error
	listErr error
}

func (f *fakePunches) SavePunches(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.stored = append(f.stored, punches...)
	return len(punches), nil
}

func (f *fakePunches) ListByRange(ctx context.Context, from, to time.Time) ([]reconcile.RawPunch, error) {
	return f.listed, f.listErr
}

type fakePublisher struct {
	ingested   []reconcile.RawPunch
	reconciled int
	unassigned int
}

func (f *fakePublisher) PublishPunchIngested(ctx context.Context, punch reconcile.RawPunch) {
	f.ingested = append(f.ingested, punch)
}

func (f *fakePublisher) PublishBatchReconciled(ctx context.Context, punchCount, unassignedCount int, from, to time.Time) {
	f.reconciled = punchCount
	f.unassigned = unassignedCount
}

func attendanceConfig() *config.AttendanceConfig {
	return &config.AttendanceConfig{
		DefaultGraceLateMinutes:  15,
		DefaultGraceEarlyMinutes: 15,
	}
}

func standardProfile() *reconcile.ScheduleProfile {
	start := reconcile.MustClockTime("09:00")
	end := reconcile.MustClockTime("17:00")
	return &reconcile.ScheduleProfile{
		ID:                "profile-1",
		Type:              reconcile.ScheduleStandard,
		GraceLateMinutes:  15,
		GraceEarlyMinutes: 15,
		Start:             &start,
		End:               &end,
	}
}

func newTestService(dir *fakeDirectory, profiles *fakeProfiles, punches *fakePunches, pub *fakePublisher) *AttendanceService {
	return NewAttendanceService(dir, profiles, punches, pub, attendanceConfig(), logger.Nop())
}

func TestAttendanceService_Reconcile(t *testing.T) {
	dir := &fakeDirectory{employees: []reconcile.Employee{
		{ID: "emp-1", Name: "Ali Hassan", DeviceUserID: "101"},
	}}
	profiles := &fakeProfiles{profiles: map[string]*reconcile.ScheduleProfile{
		"emp-1": standardProfile(),
	}}
	punches := &fakePunches{listed: []reconcile.RawPunch{
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC), Kind: reconcile.PunchCheckOut},
		{EmployeeIdentifier: "ghost", Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
	}}
	pub := &fakePublisher{}

	svc := newTestService(dir, profiles, punches, pub)

	report, err := svc.Reconcile(context.Background(), ReportFilter{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, report.Punches, 3)

	assert.Equal(t, reconcile.StatusLate, report.Punches[0].Status)
	assert.Equal(t, 20, report.Punches[0].DeviationMinutes)
	require.NotNil(t, report.Punches[0].Duration)
	assert.Equal(t, 460, report.Punches[0].Duration.TotalMinutes)
	assert.Equal(t, reconcile.StatusUnassigned, report.Punches[2].Status)

	assert.Equal(t, 460, report.Summary.Worked.TotalMinutes)
	assert.Equal(t, 20, report.Summary.Late.TotalMinutes)

	assert.Equal(t, 3, pub.reconciled)
	assert.Equal(t, 1, pub.unassigned)
}

func TestAttendanceService_Reconcile_EmployeeFilter(t *testing.T) {
	dir := &fakeDirectory{employees: []reconcile.Employee{
		{ID: "emp-1", Name: "Ali Hassan", DeviceUserID: "101"},
		{ID: "emp-2", Name: "Sara Ahmed", DeviceUserID: "102"},
	}}
	profiles := &fakeProfiles{profiles: map[string]*reconcile.ScheduleProfile{
		"emp-1": standardProfile(),
		"emp-2": standardProfile(),
	}}
	punches := &fakePunches{listed: []reconcile.RawPunch{
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
		{EmployeeIdentifier: "102", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
	}}

	svc := newTestService(dir, profiles, punches, &fakePublisher{})

	report, err := svc.Reconcile(context.Background(), ReportFilter{
		From:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EmployeeID: "emp-2",
	})
	require.NoError(t, err)
	require.Len(t, report.Punches, 1)
	assert.Equal(t, "emp-2", report.Punches[0].Employee.ID)
}

func TestAttendanceService_Reconcile_SnapshotFailureIsFatal(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name    string
		dir     *fakeDirectory
		prof    *fakeProfiles
		punches *fakePunches
	}{
		{"directory down", &fakeDirectory{err: boom}, &fakeProfiles{}, &fakePunches{}},
		{"profiles down", &fakeDirectory{}, &fakeProfiles{err: boom}, &fakePunches{}},
		{"punch store down", &fakeDirectory{}, &fakeProfiles{}, &fakePunches{listErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.dir, tt.prof, tt.punches, &fakePublisher{})

			_, err := svc.Reconcile(context.Background(), ReportFilter{})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
		})
	}
}

func TestAttendanceService_Reconcile_Idempotent(t *testing.T) {
	dir := &fakeDirectory{employees: []reconcile.Employee{
		{ID: "emp-1", Name: "Ali Hassan", DeviceUserID: "101"},
	}}
	profiles := &fakeProfiles{profiles: map[string]*reconcile.ScheduleProfile{
		"emp-1": standardProfile(),
	}}
	punches := &fakePunches{listed: []reconcile.RawPunch{
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 17, 45, 0, 0, time.UTC), Kind: reconcile.PunchCheckOut},
	}}

	svc := newTestService(dir, profiles, punches, &fakePublisher{})
	filter := ReportFilter{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	first, err := svc.Reconcile(context.Background(), filter)
	require.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAttendanceService_IngestPunches(t *testing.T) {
	punches := &fakePunches{}
	pub := &fakePublisher{}
	svc := newTestService(&fakeDirectory{}, &fakeProfiles{}, punches, pub)

	batch := []reconcile.RawPunch{
		{EmployeeIdentifier: "101", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Kind: reconcile.PunchCheckIn},
	}

	stored, err := svc.IngestPunches(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Len(t, pub.ingested, 1)
}

func TestAttendanceService_IngestPunches_StoreFailure(t *testing.T) {
	punches := &fakePunches{saveErr: errors.New("disk full")}
	pub := &fakePublisher{}
	svc := newTestService(&fakeDirectory{}, &fakeProfiles{}, punches, pub)

	_, err := svc.IngestPunches(context.Background(), []reconcile.RawPunch{
		{EmployeeIdentifier: "101", Timestamp: time.Now(), Kind: reconcile.PunchCheckIn},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
	assert.Empty(t, pub.ingested)
}
