package events

import (
	"context"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
	"github.com/wardtrack/wardtrack-backend/pkg/messaging"
)

// StaffOpsEventPublisher publishes staff operations events
type StaffOpsEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewStaffOpsEventPublisher creates a new staff operations event publisher
func NewStaffOpsEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*StaffOpsEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStaffOpsEvents, "staffops-service", log)
	if err != nil {
		return nil, err
	}

	return &StaffOpsEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishCertificationCreated publishes a certification created event
func (p *StaffOpsEventPublisher) PublishCertificationCreated(ctx context.Context, cert *repository.Certification) {
	data := messaging.CertificationCreatedEvent{
		CertificationID: cert.ID,
		EmployeeID:      cert.EmployeeID,
		Name:            cert.Name,
		ExpiresAt:       cert.ExpiresAt,
	}

	if err := p.publisher.Publish(ctx, messaging.EventCertificationCreated, data); err != nil {
		p.logger.Error().Err(err).Str("certification_id", cert.ID).Msg("failed to publish certification created event")
	}
}

// PublishCertificationExpiring publishes a certification expiring event
func (p *StaffOpsEventPublisher) PublishCertificationExpiring(ctx context.Context, cert *repository.Certification) {
	if cert.ExpiresAt == nil {
		return
	}

	data := messaging.CertificationExpiringEvent{
		CertificationID: cert.ID,
		EmployeeID:      cert.EmployeeID,
		Name:            cert.Name,
		ExpiresAt:       *cert.ExpiresAt,
		DaysUntil:       int(time.Until(*cert.ExpiresAt).Hours() / 24),
	}

	if err := p.publisher.Publish(ctx, messaging.EventCertificationExpiring, data); err != nil {
		p.logger.Error().Err(err).Str("certification_id", cert.ID).Msg("failed to publish certification expiring event")
	}
}

// PublishSeminarCreated publishes a seminar created event
func (p *StaffOpsEventPublisher) PublishSeminarCreated(ctx context.Context, seminar *repository.Seminar) {
	data := messaging.SeminarCreatedEvent{
		SeminarID: seminar.ID,
		Title:     seminar.Title,
		HeldAt:    seminar.HeldAt,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSeminarCreated, data); err != nil {
		p.logger.Error().Err(err).Str("seminar_id", seminar.ID).Msg("failed to publish seminar created event")
	}
}

// PublishSeminarRegistered publishes a seminar registration event
func (p *StaffOpsEventPublisher) PublishSeminarRegistered(ctx context.Context, seminarID, employeeID string) {
	data := messaging.SeminarRegisteredEvent{
		SeminarID:  seminarID,
		EmployeeID: employeeID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSeminarRegistered, data); err != nil {
		p.logger.Error().Err(err).Str("seminar_id", seminarID).Msg("failed to publish seminar registered event")
	}
}

// PublishShiftRequestCreated publishes a shift request created event
func (p *StaffOpsEventPublisher) PublishShiftRequestCreated(ctx context.Context, req *repository.ShiftRequest) {
	data := messaging.ShiftRequestCreatedEvent{
		RequestID:   req.ID,
		RequestType: req.RequestType,
		EmployeeID:  req.EmployeeID,
		ShiftDate:   req.ShiftDate,
	}

	if err := p.publisher.Publish(ctx, messaging.EventShiftRequestCreated, data); err != nil {
		p.logger.Error().Err(err).Str("request_id", req.ID).Msg("failed to publish shift request created event")
	}
}

// PublishShiftRequestDecided publishes a shift request decision event
func (p *StaffOpsEventPublisher) PublishShiftRequestDecided(ctx context.Context, requestID, decision, decidedBy, reason string) {
	data := messaging.ShiftRequestDecidedEvent{
		RequestID: requestID,
		Decision:  decision,
		DecidedBy: decidedBy,
		Reason:    reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventShiftRequestDecided, data); err != nil {
		p.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to publish shift request decided event")
	}
}
