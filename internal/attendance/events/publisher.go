package events

import (
	"context"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/repository"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
	"github.com/wardtrack/wardtrack-backend/pkg/messaging"
)

// AttendanceEventPublisher publishes attendance-related events
type AttendanceEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAttendanceEventPublisher creates a new attendance event publisher
func NewAttendanceEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*AttendanceEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAttendanceEvents, "attendance-service", log)
	if err != nil {
		return nil, err
	}

	return &AttendanceEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishPunchIngested publishes a punch ingested event
func (p *AttendanceEventPublisher) PublishPunchIngested(ctx context.Context, punch reconcile.RawPunch) {
	data := messaging.PunchIngestedEvent{
		EmployeeIdentifier: punch.EmployeeIdentifier,
		PunchedAt:          punch.Timestamp,
		StatusKind:         string(punch.Kind),
	}

	if err := p.publisher.Publish(ctx, messaging.EventPunchIngested, data); err != nil {
		p.logger.Error().Err(err).Str("identifier", punch.EmployeeIdentifier).Msg("failed to publish punch ingested event")
	}
}

// PublishBatchReconciled publishes a batch reconciled event
func (p *AttendanceEventPublisher) PublishBatchReconciled(ctx context.Context, punchCount, unassignedCount int, from, to time.Time) {
	data := messaging.BatchReconciledEvent{
		PunchCount:      punchCount,
		UnassignedCount: unassignedCount,
		From:            from,
		To:              to,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchReconciled, data); err != nil {
		p.logger.Error().Err(err).Int("punch_count", punchCount).Msg("failed to publish batch reconciled event")
	}
}

// PublishProfileCreated publishes a schedule profile created event
func (p *AttendanceEventPublisher) PublishProfileCreated(ctx context.Context, profile *repository.ScheduleProfile) {
	data := messaging.ProfileCreatedEvent{
		ProfileID:    profile.ID,
		ScheduleType: profile.ScheduleType,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProfileCreated, data); err != nil {
		p.logger.Error().Err(err).Str("profile_id", profile.ID).Msg("failed to publish profile created event")
	}
}

// PublishProfileUpdated publishes a schedule profile updated event
func (p *AttendanceEventPublisher) PublishProfileUpdated(ctx context.Context, profile *repository.ScheduleProfile) {
	data := messaging.ProfileUpdatedEvent{
		ProfileID: profile.ID,
		Fields:    map[string]any{"schedule_type": profile.ScheduleType},
	}

	if err := p.publisher.Publish(ctx, messaging.EventProfileUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("profile_id", profile.ID).Msg("failed to publish profile updated event")
	}
}

// PublishDirectoryUpdated publishes a directory updated event
func (p *AttendanceEventPublisher) PublishDirectoryUpdated(ctx context.Context, employeeID string) {
	data := map[string]string{"employee_id": employeeID}

	if err := p.publisher.Publish(ctx, messaging.EventDirectoryUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Msg("failed to publish directory updated event")
	}
}
