package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	apperrors "github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

type fakeCertStore struct {
	certs map[string]*repository.Certification
}

func newFakeCertStore() *fakeCertStore {
	return &fakeCertStore{certs: make(map[string]*repository.Certification)}
}

func (f *fakeCertStore) Create(ctx context.Context, cert *repository.Certification) error {
	if cert.ID == "" {
		cert.ID = "cert-1"
	}
	f.certs[cert.ID] = cert
	return nil
}

func (f *fakeCertStore) GetByID(ctx context.Context, id string) (*repository.Certification, error) {
	cert, ok := f.certs[id]
	if !ok {
		return nil, apperrors.NotFound("certification")
	}
	return cert, nil
}

func (f *fakeCertStore) ListByEmployee(ctx context.Context, employeeID string) ([]repository.Certification, error) {
	var out []repository.Certification
	for _, c := range f.certs {
		if c.EmployeeID == employeeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertStore) ListExpiring(ctx context.Context, within time.Duration) ([]repository.Certification, error) {
	cutoff := time.Now().Add(within)
	var out []repository.Certification
	for _, c := range f.certs {
		if c.ExpiresAt != nil && c.ExpiresAt.Before(cutoff) && c.ExpiresAt.After(time.Now()) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.certs[id]; !ok {
		return apperrors.NotFound("certification")
	}
	delete(f.certs, id)
	return nil
}

type fakeSeminarStore struct {
	seminars      map[string]*repository.Seminar
	registrations map[string][]string
}

func newFakeSeminarStore() *fakeSeminarStore {
	return &fakeSeminarStore{
		seminars:      make(map[string]*repository.Seminar),
		registrations: make(map[string][]string),
	}
}

func (f *fakeSeminarStore) Create(ctx context.Context, seminar *repository.Seminar) error {
	if seminar.ID == "" {
		seminar.ID = "sem-1"
	}
	f.seminars[seminar.ID] = seminar
	return nil
}

func (f *fakeSeminarStore) GetByID(ctx context.Context, id string) (*repository.Seminar, error) {
	sem, ok := f.seminars[id]
	if !ok {
		return nil, apperrors.NotFound("seminar")
	}
	return sem, nil
}

func (f *fakeSeminarStore) List(ctx context.Context) ([]repository.Seminar, error) {
	var out []repository.Seminar
	for _, s := range f.seminars {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSeminarStore) Register(ctx context.Context, seminarID, employeeID string) error {
	for _, id := range f.registrations[seminarID] {
		if id == employeeID {
			return apperrors.Conflict("employee is already registered for this seminar")
		}
	}
	f.registrations[seminarID] = append(f.registrations[seminarID], employeeID)
	return nil
}

func (f *fakeSeminarStore) CountRegistrations(ctx context.Context, seminarID string) (int, error) {
	return len(f.registrations[seminarID]), nil
}

func (f *fakeSeminarStore) ListRegistrations(ctx context.Context, seminarID string) ([]repository.SeminarRegistration, error) {
	var out []repository.SeminarRegistration
	for _, id := range f.registrations[seminarID] {
		out = append(out, repository.SeminarRegistration{SeminarID: seminarID, EmployeeID: id})
	}
	return out, nil
}

type fakeShiftStore struct {
	requests map[string]*repository.ShiftRequest
}

func newFakeShiftStore() *fakeShiftStore {
	return &fakeShiftStore{requests: make(map[string]*repository.ShiftRequest)}
}

func (f *fakeShiftStore) Create(ctx context.Context, req *repository.ShiftRequest) error {
	if req.ID == "" {
		req.ID = "req-1"
	}
	req.Status = repository.RequestStatusPending
	f.requests[req.ID] = req
	return nil
}

func (f *fakeShiftStore) GetByID(ctx context.Context, id string) (*repository.ShiftRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("shift request")
	}
	return req, nil
}

func (f *fakeShiftStore) List(ctx context.Context, status string) ([]repository.ShiftRequest, error) {
	var out []repository.ShiftRequest
	for _, r := range f.requests {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeShiftStore) Decide(ctx context.Context, id, status, decidedBy, reason string) error {
	req, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("shift request")
	}
	if req.Status != repository.RequestStatusPending {
		return apperrors.Conflict("shift request has already been decided")
	}
	req.Status = status
	req.DecidedBy = &decidedBy
	return nil
}

type fakeOpsPublisher struct {
	certCreated    int
	certExpiring   int
	seminarCreated int
	registered     int
	requestCreated int
	decided        []string
}

func (f *fakeOpsPublisher) PublishCertificationCreated(ctx context.Context, cert *repository.Certification) {
	f.certCreated++
}

func (f *fakeOpsPublisher) PublishCertificationExpiring(ctx context.Context, cert *repository.Certification) {
	f.certExpiring++
}

func (f *fakeOpsPublisher) PublishSeminarCreated(ctx context.Context, seminar *repository.Seminar) {
	f.seminarCreated++
}

func (f *fakeOpsPublisher) PublishSeminarRegistered(ctx context.Context, seminarID, employeeID string) {
	f.registered++
}

func (f *fakeOpsPublisher) PublishShiftRequestCreated(ctx context.Context, req *repository.ShiftRequest) {
	f.requestCreated++
}

func (f *fakeOpsPublisher) PublishShiftRequestDecided(ctx context.Context, requestID, decision, decidedBy, reason string) {
	f.decided = append(f.decided, decision)
}

func newTestService() (*StaffOpsService, *fakeCertStore, *fakeSeminarStore, *fakeShiftStore, *fakeOpsPublisher) {
	certs := newFakeCertStore()
	seminars := newFakeSeminarStore()
	shifts := newFakeShiftStore()
	pub := &fakeOpsPublisher{}
	svc := NewStaffOpsService(certs, seminars, shifts, pub, logger.Nop())
	return svc, certs, seminars, shifts, pub
}

func TestCreateCertification_RejectsExpiryBeforeIssue(t *testing.T) {
	svc, _, _, _, pub := newTestService()

	issued := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	expired := issued.AddDate(0, -1, 0)

	err := svc.CreateCertification(context.Background(), &repository.Certification{
		EmployeeID: "emp-1",
		Name:       "ACLS",
		IssuedAt:   issued,
		ExpiresAt:  &expired,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Zero(t, pub.certCreated)
}

func TestListExpiringCertifications_PublishesPerHit(t *testing.T) {
	svc, certs, _, _, pub := newTestService()

	soon := time.Now().Add(10 * 24 * time.Hour)
	later := time.Now().Add(200 * 24 * time.Hour)
	require.NoError(t, certs.Create(context.Background(), &repository.Certification{
		ID: "c1", EmployeeID: "emp-1", Name: "ACLS", ExpiresAt: &soon,
	}))
	require.NoError(t, certs.Create(context.Background(), &repository.Certification{
		ID: "c2", EmployeeID: "emp-2", Name: "BLS", ExpiresAt: &later,
	}))

	expiring, err := svc.ListExpiringCertifications(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "c1", expiring[0].ID)
	assert.Equal(t, 1, pub.certExpiring)
}

func TestRegisterForSeminar_CapacityEnforced(t *testing.T) {
	svc, _, seminars, _, pub := newTestService()

	require.NoError(t, seminars.Create(context.Background(), &repository.Seminar{
		ID: "sem-1", Title: "Infection Control", Capacity: 1,
	}))

	require.NoError(t, svc.RegisterForSeminar(context.Background(), "sem-1", "emp-1"))

	err := svc.RegisterForSeminar(context.Background(), "sem-1", "emp-2")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 1, pub.registered)
}

func TestRegisterForSeminar_DuplicateRejected(t *testing.T) {
	svc, _, seminars, _, _ := newTestService()

	require.NoError(t, seminars.Create(context.Background(), &repository.Seminar{
		ID: "sem-1", Title: "Infection Control", Capacity: 10,
	}))

	require.NoError(t, svc.RegisterForSeminar(context.Background(), "sem-1", "emp-1"))

	err := svc.RegisterForSeminar(context.Background(), "sem-1", "emp-1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCreateShiftRequest_SwapRules(t *testing.T) {
	counterpart := "emp-2"
	self := "emp-1"

	tests := []struct {
		name    string
		req     repository.ShiftRequest
		wantErr bool
	}{
		{
			name: "swap with counterpart",
			req: repository.ShiftRequest{
				RequestType: repository.RequestTypeSwap, EmployeeID: "emp-1", CounterpartID: &counterpart,
			},
		},
		{
			name: "swap without counterpart",
			req: repository.ShiftRequest{
				RequestType: repository.RequestTypeSwap, EmployeeID: "emp-1",
			},
			wantErr: true,
		},
		{
			name: "swap with self",
			req: repository.ShiftRequest{
				RequestType: repository.RequestTypeSwap, EmployeeID: "emp-1", CounterpartID: &self,
			},
			wantErr: true,
		},
		{
			name: "sell without counterpart",
			req: repository.ShiftRequest{
				RequestType: repository.RequestTypeSell, EmployeeID: "emp-1",
			},
		},
		{
			name: "sell with counterpart",
			req: repository.ShiftRequest{
				RequestType: repository.RequestTypeSell, EmployeeID: "emp-1", CounterpartID: &counterpart,
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			req: repository.ShiftRequest{
				RequestType: "giveaway", EmployeeID: "emp-1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _, _ := newTestService()
			req := tt.req

			err := svc.CreateShiftRequest(context.Background(), &req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecideShiftRequest(t *testing.T) {
	svc, _, _, shifts, pub := newTestService()

	counterpart := "emp-2"
	req := &repository.ShiftRequest{
		RequestType: repository.RequestTypeSwap, EmployeeID: "emp-1", CounterpartID: &counterpart,
	}
	require.NoError(t, svc.CreateShiftRequest(context.Background(), req))

	// rejection without a reason is refused
	err := svc.DecideShiftRequest(context.Background(), req.ID, repository.RequestStatusRejected, "mgr-1", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	require.NoError(t, svc.DecideShiftRequest(context.Background(), req.ID, repository.RequestStatusApproved, "mgr-1", ""))
	assert.Equal(t, []string{repository.RequestStatusApproved}, pub.decided)

	// second decision conflicts
	err = svc.DecideShiftRequest(context.Background(), req.ID, repository.RequestStatusApproved, "mgr-2", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	stored, err := shifts.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.RequestStatusApproved, stored.Status)
}
