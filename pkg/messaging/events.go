package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Attendance events
	EventPunchIngested    = "attendance.punch.ingested"
	EventBatchReconciled  = "attendance.batch.reconciled"
	EventDirectoryUpdated = "attendance.directory.updated"

	// Schedule profile events
	EventProfileCreated = "attendance.profile.created"
	EventProfileUpdated = "attendance.profile.updated"

	// Staff operations events
	EventCertificationCreated  = "staffops.certification.created"
	EventCertificationExpiring = "staffops.certification.expiring"
	EventSeminarCreated        = "staffops.seminar.created"
	EventSeminarRegistered     = "staffops.seminar.registered"
	EventShiftRequestCreated   = "staffops.shift_request.created"
	EventShiftRequestDecided   = "staffops.shift_request.decided"
)

// Exchange names
const (
	ExchangeAttendanceEvents = "attendance.events"
	ExchangeStaffOpsEvents   = "staffops.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Attendance events

// PunchIngestedEvent is published when a device punch is stored
type PunchIngestedEvent struct {
	EmployeeIdentifier string    `json:"employee_identifier"`
	PunchedAt          time.Time `json:"punched_at"`
	StatusKind         string    `json:"status_kind"`
}

// BatchReconciledEvent is published after a reconciliation pass completes
type BatchReconciledEvent struct {
	PunchCount      int       `json:"punch_count"`
	UnassignedCount int       `json:"unassigned_count"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
}

// ProfileCreatedEvent is published when a schedule profile is created
type ProfileCreatedEvent struct {
	ProfileID    string `json:"profile_id"`
	ScheduleType string `json:"schedule_type"`
}

// ProfileUpdatedEvent is published when a schedule profile is updated
type ProfileUpdatedEvent struct {
	ProfileID string         `json:"profile_id"`
	Fields    map[string]any `json:"fields"`
}

// Staff operations events

// CertificationCreatedEvent is published when a certification record is created
type CertificationCreatedEvent struct {
	CertificationID string     `json:"certification_id"`
	EmployeeID      string     `json:"employee_id"`
	Name            string     `json:"name"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// CertificationExpiringEvent is published when a certification is nearing expiry
type CertificationExpiringEvent struct {
	CertificationID string    `json:"certification_id"`
	EmployeeID      string    `json:"employee_id"`
	Name            string    `json:"name"`
	ExpiresAt       time.Time `json:"expires_at"`
	DaysUntil       int       `json:"days_until"`
}

// SeminarCreatedEvent is published when a seminar is created
type SeminarCreatedEvent struct {
	SeminarID string    `json:"seminar_id"`
	Title     string    `json:"title"`
	HeldAt    time.Time `json:"held_at"`
}

// SeminarRegisteredEvent is published when an employee registers for a seminar
type SeminarRegisteredEvent struct {
	SeminarID  string `json:"seminar_id"`
	EmployeeID string `json:"employee_id"`
}

// ShiftRequestCreatedEvent is published when a swap or sell request is created
type ShiftRequestCreatedEvent struct {
	RequestID   string    `json:"request_id"`
	RequestType string    `json:"request_type"` // swap or sell
	EmployeeID  string    `json:"employee_id"`
	ShiftDate   time.Time `json:"shift_date"`
}

// ShiftRequestDecidedEvent is published when a manager approves or rejects a request
type ShiftRequestDecidedEvent struct {
	RequestID string `json:"request_id"`
	Decision  string `json:"decision"` // approved or rejected
	DecidedBy string `json:"decided_by"`
	Reason    string `json:"reason,omitempty"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
