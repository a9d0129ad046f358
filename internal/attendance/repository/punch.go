package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
)

// Punch is a persisted device punch row
type Punch struct {
	ID                 string    `db:"id" json:"id"`
	EmployeeIdentifier string    `db:"employee_identifier" json:"employee_identifier"`
	PunchedAt          time.Time `db:"punched_at" json:"punched_at"`
	StatusKind         string    `db:"status_kind" json:"status_kind"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// PunchRepository handles punch persistence
type PunchRepository struct {
	db *database.DB
}

// NewPunchRepository creates a new punch repository
func NewPunchRepository(db *database.DB) *PunchRepository {
	return &PunchRepository{db: db}
}

// SavePunches stores punches, skipping rows that already exist. The unique
// key on (employee_identifier, punched_at) makes resubmission of the same
// device log idempotent. Returns the number of newly stored punches.
func (r *PunchRepository) SavePunches(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	query := `
		INSERT INTO punches (id, employee_identifier, punched_at, status_kind, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (employee_identifier, punched_at) DO NOTHING
	`

	stored := 0
	for _, p := range punches {
		result, err := r.db.ExecContext(ctx, query, uuid.New().String(), p.EmployeeIdentifier, p.Timestamp, string(p.Kind))
		if err != nil {
			return stored, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return stored, err
		}
		stored += int(affected)
	}

	return stored, nil
}

// ListByRange returns all punches within [from, to), ordered by time
func (r *PunchRepository) ListByRange(ctx context.Context, from, to time.Time) ([]reconcile.RawPunch, error) {
	query := `
		SELECT id, employee_identifier, punched_at, status_kind, created_at
		FROM punches
		WHERE punched_at >= $1 AND punched_at < $2
		ORDER BY punched_at ASC
	`

	var rows []Punch
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, err
	}

	return toRawPunches(rows), nil
}

// ListByIdentifier returns all punches for one identifier within [from, to)
func (r *PunchRepository) ListByIdentifier(ctx context.Context, identifier string, from, to time.Time) ([]reconcile.RawPunch, error) {
	query := `
		SELECT id, employee_identifier, punched_at, status_kind, created_at
		FROM punches
		WHERE employee_identifier = $1 AND punched_at >= $2 AND punched_at < $3
		ORDER BY punched_at ASC
	`

	var rows []Punch
	if err := r.db.SelectContext(ctx, &rows, query, identifier, from, to); err != nil {
		return nil, err
	}

	return toRawPunches(rows), nil
}

func toRawPunches(rows []Punch) []reconcile.RawPunch {
	punches := make([]reconcile.RawPunch, 0, len(rows))
	for _, row := range rows {
		punches = append(punches, reconcile.RawPunch{
			EmployeeIdentifier: row.EmployeeIdentifier,
			Timestamp:          row.PunchedAt,
			Kind:               reconcile.PunchKind(row.StatusKind),
		})
	}
	return punches
}
