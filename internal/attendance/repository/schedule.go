package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
)

// ScheduleProfile is a persisted schedule profile row. Patterns are stored
// as JSONB; the start/end columns hold "HH:MM" strings.
type ScheduleProfile struct {
	ID                string          `db:"id" json:"id"`
	ScheduleType      string          `db:"schedule_type" json:"schedule_type"`
	GraceLateMinutes  int             `db:"grace_late_minutes" json:"grace_late_minutes"`
	GraceEarlyMinutes int             `db:"grace_early_minutes" json:"grace_early_minutes"`
	StartTime         sql.NullString  `db:"start_time" json:"start_time,omitempty"`
	EndTime           sql.NullString  `db:"end_time" json:"end_time,omitempty"`
	Patterns          json.RawMessage `db:"patterns" json:"patterns,omitempty"`
	EmployeeIDs       pq.StringArray  `db:"employee_ids" json:"employee_ids"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// ScheduleRepository handles schedule profile persistence
type ScheduleRepository struct {
	db *database.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new schedule profile. Flexible patterns are validated
// here so two patterns can never claim the same weekday; the engine's
// first-match-wins rule only ever applies to rows that predate this check.
func (r *ScheduleRepository) Create(ctx context.Context, profile *ScheduleProfile) error {
	if err := validatePatterns(profile); err != nil {
		return err
	}

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	query := `
		INSERT INTO schedule_profiles
			(id, schedule_type, grace_late_minutes, grace_early_minutes, start_time, end_time, patterns, employee_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.ScheduleType, profile.GraceLateMinutes, profile.GraceEarlyMinutes,
		profile.StartTime, profile.EndTime, profile.Patterns, profile.EmployeeIDs)
	return err
}

// Update replaces an existing schedule profile
func (r *ScheduleRepository) Update(ctx context.Context, profile *ScheduleProfile) error {
	if err := validatePatterns(profile); err != nil {
		return err
	}

	query := `
		UPDATE schedule_profiles
		SET schedule_type = $2, grace_late_minutes = $3, grace_early_minutes = $4,
			start_time = $5, end_time = $6, patterns = $7, employee_ids = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.ScheduleType, profile.GraceLateMinutes, profile.GraceEarlyMinutes,
		profile.StartTime, profile.EndTime, profile.Patterns, profile.EmployeeIDs)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound("schedule profile")
	}

	return nil
}

// GetByID gets a schedule profile by ID
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*ScheduleProfile, error) {
	var profile ScheduleProfile
	query := `
		SELECT id, schedule_type, grace_late_minutes, grace_early_minutes, start_time, end_time, patterns, employee_ids, created_at, updated_at
		FROM schedule_profiles
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("schedule profile")
		}
		return nil, err
	}

	return &profile, nil
}

// List returns all schedule profiles
func (r *ScheduleRepository) List(ctx context.Context) ([]ScheduleProfile, error) {
	query := `
		SELECT id, schedule_type, grace_late_minutes, grace_early_minutes, start_time, end_time, patterns, employee_ids, created_at, updated_at
		FROM schedule_profiles
		ORDER BY created_at ASC
	`

	var profiles []ScheduleProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, err
	}

	return profiles, nil
}

// MapByEmployee returns all profiles keyed by employee ID in the form the
// reconciliation engine consumes
func (r *ScheduleRepository) MapByEmployee(ctx context.Context) (map[string]*reconcile.ScheduleProfile, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*reconcile.ScheduleProfile)
	for i := range rows {
		profile, err := toEngineProfile(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("invalid schedule profile %s: %w", rows[i].ID, err)
		}
		for _, employeeID := range rows[i].EmployeeIDs {
			profiles[employeeID] = profile
		}
	}

	return profiles, nil
}

func toEngineProfile(row *ScheduleProfile) (*reconcile.ScheduleProfile, error) {
	profile := &reconcile.ScheduleProfile{
		ID:                row.ID,
		Type:              reconcile.ScheduleType(row.ScheduleType),
		GraceLateMinutes:  row.GraceLateMinutes,
		GraceEarlyMinutes: row.GraceEarlyMinutes,
	}

	if row.StartTime.Valid {
		start, err := reconcile.ParseClockTime(row.StartTime.String)
		if err != nil {
			return nil, err
		}
		profile.Start = &start
	}
	if row.EndTime.Valid {
		end, err := reconcile.ParseClockTime(row.EndTime.String)
		if err != nil {
			return nil, err
		}
		profile.End = &end
	}

	if len(row.Patterns) > 0 {
		if err := json.Unmarshal(row.Patterns, &profile.Patterns); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

func validatePatterns(profile *ScheduleProfile) error {
	if len(profile.Patterns) == 0 {
		return nil
	}

	var patterns []reconcile.SchedulePattern
	if err := json.Unmarshal(profile.Patterns, &patterns); err != nil {
		return errors.BadRequest("invalid schedule patterns: " + err.Error())
	}

	if overlap := reconcile.ValidatePatterns(patterns); len(overlap) > 0 {
		return errors.Validation(map[string]string{
			"patterns": fmt.Sprintf("weekdays claimed by more than one pattern: %v", overlap),
		})
	}

	return nil
}
