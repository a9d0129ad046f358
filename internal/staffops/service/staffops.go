package service

import (
	"context"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// CertificationStore persists certifications
type CertificationStore interface {
	Create(ctx context.Context, cert *repository.Certification) error
	GetByID(ctx context.Context, id string) (*repository.Certification, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]repository.Certification, error)
	ListExpiring(ctx context.Context, within time.Duration) ([]repository.Certification, error)
	Delete(ctx context.Context, id string) error
}

// SeminarStore persists seminars and registrations
type SeminarStore interface {
	Create(ctx context.Context, seminar *repository.Seminar) error
	GetByID(ctx context.Context, id string) (*repository.Seminar, error)
	List(ctx context.Context) ([]repository.Seminar, error)
	Register(ctx context.Context, seminarID, employeeID string) error
	CountRegistrations(ctx context.Context, seminarID string) (int, error)
	ListRegistrations(ctx context.Context, seminarID string) ([]repository.SeminarRegistration, error)
}

// ShiftRequestStore persists shift swap and sell requests
type ShiftRequestStore interface {
	Create(ctx context.Context, req *repository.ShiftRequest) error
	GetByID(ctx context.Context, id string) (*repository.ShiftRequest, error)
	List(ctx context.Context, status string) ([]repository.ShiftRequest, error)
	Decide(ctx context.Context, id, status, decidedBy, reason string) error
}

// EventPublisher publishes staff operations events
type EventPublisher interface {
	PublishCertificationCreated(ctx context.Context, cert *repository.Certification)
	PublishCertificationExpiring(ctx context.Context, cert *repository.Certification)
	PublishSeminarCreated(ctx context.Context, seminar *repository.Seminar)
	PublishSeminarRegistered(ctx context.Context, seminarID, employeeID string)
	PublishShiftRequestCreated(ctx context.Context, req *repository.ShiftRequest)
	PublishShiftRequestDecided(ctx context.Context, requestID, decision, decidedBy, reason string)
}

// StaffOpsService handles staff operations business logic
type StaffOpsService struct {
	certifications CertificationStore
	seminars       SeminarStore
	shiftRequests  ShiftRequestStore
	publisher      EventPublisher
	logger         *logger.Logger
}

// NewStaffOpsService creates a new staff operations service
func NewStaffOpsService(
	certifications CertificationStore,
	seminars SeminarStore,
	shiftRequests ShiftRequestStore,
	publisher EventPublisher,
	log *logger.Logger,
) *StaffOpsService {
	return &StaffOpsService{
		certifications: certifications,
		seminars:       seminars,
		shiftRequests:  shiftRequests,
		publisher:      publisher,
		logger:         log,
	}
}

// Certifications

// CreateCertification creates a certification record
func (s *StaffOpsService) CreateCertification(ctx context.Context, cert *repository.Certification) error {
	if cert.ExpiresAt != nil && !cert.ExpiresAt.After(cert.IssuedAt) {
		return errors.BadRequest("expires_at must be after issued_at")
	}

	if err := s.certifications.Create(ctx, cert); err != nil {
		return err
	}

	s.publisher.PublishCertificationCreated(ctx, cert)
	return nil
}

// GetCertification gets a certification by ID
func (s *StaffOpsService) GetCertification(ctx context.Context, id string) (*repository.Certification, error) {
	return s.certifications.GetByID(ctx, id)
}

// ListCertifications lists an employee's certifications
func (s *StaffOpsService) ListCertifications(ctx context.Context, employeeID string) ([]repository.Certification, error) {
	return s.certifications.ListByEmployee(ctx, employeeID)
}

// ListExpiringCertifications lists certifications expiring within the horizon
// and publishes an expiring event per hit so notification consumers can act
func (s *StaffOpsService) ListExpiringCertifications(ctx context.Context, within time.Duration) ([]repository.Certification, error) {
	certs, err := s.certifications.ListExpiring(ctx, within)
	if err != nil {
		return nil, err
	}

	for i := range certs {
		s.publisher.PublishCertificationExpiring(ctx, &certs[i])
	}

	return certs, nil
}

// DeleteCertification removes a certification
func (s *StaffOpsService) DeleteCertification(ctx context.Context, id string) error {
	return s.certifications.Delete(ctx, id)
}

// Seminars

// CreateSeminar creates a seminar
func (s *StaffOpsService) CreateSeminar(ctx context.Context, seminar *repository.Seminar) error {
	if err := s.seminars.Create(ctx, seminar); err != nil {
		return err
	}

	s.publisher.PublishSeminarCreated(ctx, seminar)
	return nil
}

// GetSeminar gets a seminar by ID
func (s *StaffOpsService) GetSeminar(ctx context.Context, id string) (*repository.Seminar, error) {
	return s.seminars.GetByID(ctx, id)
}

// ListSeminars lists seminars
func (s *StaffOpsService) ListSeminars(ctx context.Context) ([]repository.Seminar, error) {
	return s.seminars.List(ctx)
}

// RegisterForSeminar registers an employee for a seminar, enforcing capacity
func (s *StaffOpsService) RegisterForSeminar(ctx context.Context, seminarID, employeeID string) error {
	seminar, err := s.seminars.GetByID(ctx, seminarID)
	if err != nil {
		return err
	}

	if seminar.Capacity > 0 {
		count, err := s.seminars.CountRegistrations(ctx, seminarID)
		if err != nil {
			return err
		}
		if count >= seminar.Capacity {
			return errors.Conflict("seminar is at capacity")
		}
	}

	if err := s.seminars.Register(ctx, seminarID, employeeID); err != nil {
		return err
	}

	s.publisher.PublishSeminarRegistered(ctx, seminarID, employeeID)
	return nil
}

// ListSeminarRegistrations lists registrations for a seminar
func (s *StaffOpsService) ListSeminarRegistrations(ctx context.Context, seminarID string) ([]repository.SeminarRegistration, error) {
	return s.seminars.ListRegistrations(ctx, seminarID)
}

// Shift requests

// CreateShiftRequest creates a swap or sell request. A swap must name the
// counterpart whose shift is exchanged; a sell must not.
func (s *StaffOpsService) CreateShiftRequest(ctx context.Context, req *repository.ShiftRequest) error {
	switch req.RequestType {
	case repository.RequestTypeSwap:
		if req.CounterpartID == nil || *req.CounterpartID == "" {
			return errors.BadRequest("swap requests require a counterpart employee")
		}
		if *req.CounterpartID == req.EmployeeID {
			return errors.BadRequest("cannot swap a shift with yourself")
		}
	case repository.RequestTypeSell:
		if req.CounterpartID != nil {
			return errors.BadRequest("sell requests are open offers and cannot name a counterpart")
		}
	default:
		return errors.BadRequest("request_type must be swap or sell")
	}

	if err := s.shiftRequests.Create(ctx, req); err != nil {
		return err
	}

	s.publisher.PublishShiftRequestCreated(ctx, req)
	return nil
}

// GetShiftRequest gets a shift request by ID
func (s *StaffOpsService) GetShiftRequest(ctx context.Context, id string) (*repository.ShiftRequest, error) {
	return s.shiftRequests.GetByID(ctx, id)
}

// ListShiftRequests lists shift requests, optionally filtered by status
func (s *StaffOpsService) ListShiftRequests(ctx context.Context, status string) ([]repository.ShiftRequest, error) {
	return s.shiftRequests.List(ctx, status)
}

// DecideShiftRequest approves or rejects a pending shift request
func (s *StaffOpsService) DecideShiftRequest(ctx context.Context, id, decision, decidedBy, reason string) error {
	if decision != repository.RequestStatusApproved && decision != repository.RequestStatusRejected {
		return errors.BadRequest("decision must be approved or rejected")
	}
	if decision == repository.RequestStatusRejected && reason == "" {
		return errors.BadRequest("rejections require a reason")
	}

	if err := s.shiftRequests.Decide(ctx, id, decision, decidedBy, reason); err != nil {
		return err
	}

	s.publisher.PublishShiftRequestDecided(ctx, id, decision, decidedBy, reason)

	s.logger.Info().
		Str("request_id", id).
		Str("decision", decision).
		Str("decided_by", decidedBy).
		Msg("shift request decided")

	return nil
}
