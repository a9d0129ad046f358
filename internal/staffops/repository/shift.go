package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
)

// Shift request types and statuses
const (
	RequestTypeSwap = "swap"
	RequestTypeSell = "sell"

	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ShiftRequest is a swap or sell request for a scheduled shift. A swap names
// the counterpart whose shift is exchanged; a sell is an open offer.
type ShiftRequest struct {
	ID            string     `db:"id" json:"id"`
	RequestType   string     `db:"request_type" json:"request_type"`
	EmployeeID    string     `db:"employee_id" json:"employee_id"`
	CounterpartID *string    `db:"counterpart_id" json:"counterpart_id,omitempty"`
	ShiftDate     time.Time  `db:"shift_date" json:"shift_date"`
	Status        string     `db:"status" json:"status"`
	DecidedBy     *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt     *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ShiftRequestRepository handles shift request persistence
type ShiftRequestRepository struct {
	db *database.DB
}

// NewShiftRequestRepository creates a new shift request repository
func NewShiftRequestRepository(db *database.DB) *ShiftRequestRepository {
	return &ShiftRequestRepository{db: db}
}

// Create inserts a new shift request in pending state
func (r *ShiftRequestRepository) Create(ctx context.Context, req *ShiftRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.Status = RequestStatusPending

	query := `
		INSERT INTO shift_requests (id, request_type, employee_id, counterpart_id, shift_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.RequestType, req.EmployeeID, req.CounterpartID, req.ShiftDate, req.Status)
	return err
}

// GetByID gets a shift request by ID
func (r *ShiftRequestRepository) GetByID(ctx context.Context, id string) (*ShiftRequest, error) {
	var req ShiftRequest
	query := `
		SELECT id, request_type, employee_id, counterpart_id, shift_date, status, decided_by, decided_at, reason, created_at, updated_at
		FROM shift_requests
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("shift request")
		}
		return nil, err
	}

	return &req, nil
}

// List returns shift requests, optionally filtered by status
func (r *ShiftRequestRepository) List(ctx context.Context, status string) ([]ShiftRequest, error) {
	query := `
		SELECT id, request_type, employee_id, counterpart_id, shift_date, status, decided_by, decided_at, reason, created_at, updated_at
		FROM shift_requests
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var requests []ShiftRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}

	return requests, nil
}

// Decide moves a pending request to approved or rejected. Deciding an
// already decided request is a conflict; the WHERE clause guards against a
// concurrent decision racing past the service-level check.
func (r *ShiftRequestRepository) Decide(ctx context.Context, id, status, decidedBy, reason string) error {
	query := `
		UPDATE shift_requests
		SET status = $2, decided_by = $3, decided_at = NOW(), reason = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, id, status, decidedBy, reason, RequestStatusPending)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// distinguish missing from already decided
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return errors.Conflict("shift request has already been decided")
	}

	return nil
}
