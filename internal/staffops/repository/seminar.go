package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
)

// Seminar is a training seminar staff can register for
type Seminar struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	HeldAt      time.Time `db:"held_at" json:"held_at"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SeminarRegistration links an employee to a seminar
type SeminarRegistration struct {
	SeminarID    string    `db:"seminar_id" json:"seminar_id"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// SeminarRepository handles seminar persistence
type SeminarRepository struct {
	db *database.DB
}

// NewSeminarRepository creates a new seminar repository
func NewSeminarRepository(db *database.DB) *SeminarRepository {
	return &SeminarRepository{db: db}
}

// Create inserts a new seminar
func (r *SeminarRepository) Create(ctx context.Context, seminar *Seminar) error {
	if seminar.ID == "" {
		seminar.ID = uuid.New().String()
	}

	query := `
		INSERT INTO seminars (id, title, description, location, held_at, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		seminar.ID, seminar.Title, seminar.Description, seminar.Location, seminar.HeldAt, seminar.Capacity)
	return err
}

// GetByID gets a seminar by ID
func (r *SeminarRepository) GetByID(ctx context.Context, id string) (*Seminar, error) {
	var seminar Seminar
	query := `
		SELECT id, title, description, location, held_at, capacity, created_at, updated_at
		FROM seminars
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &seminar, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("seminar")
		}
		return nil, err
	}

	return &seminar, nil
}

// List returns upcoming seminars, soonest first
func (r *SeminarRepository) List(ctx context.Context) ([]Seminar, error) {
	query := `
		SELECT id, title, description, location, held_at, capacity, created_at, updated_at
		FROM seminars
		ORDER BY held_at ASC
	`

	var seminars []Seminar
	if err := r.db.SelectContext(ctx, &seminars, query); err != nil {
		return nil, err
	}

	return seminars, nil
}

// Register adds an employee to a seminar. Registering twice is a conflict.
func (r *SeminarRepository) Register(ctx context.Context, seminarID, employeeID string) error {
	query := `
		INSERT INTO seminar_registrations (seminar_id, employee_id, registered_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := r.db.ExecContext(ctx, query, seminarID, employeeID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return errors.Conflict("employee is already registered for this seminar")
		}
		return err
	}

	return nil
}

// CountRegistrations returns the number of registrations for a seminar
func (r *SeminarRepository) CountRegistrations(ctx context.Context, seminarID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM seminar_registrations WHERE seminar_id = $1`

	if err := r.db.GetContext(ctx, &count, query, seminarID); err != nil {
		return 0, err
	}

	return count, nil
}

// ListRegistrations returns all registrations for a seminar
func (r *SeminarRepository) ListRegistrations(ctx context.Context, seminarID string) ([]SeminarRegistration, error) {
	query := `
		SELECT seminar_id, employee_id, registered_at
		FROM seminar_registrations
		WHERE seminar_id = $1
		ORDER BY registered_at ASC
	`

	var registrations []SeminarRegistration
	if err := r.db.SelectContext(ctx, &registrations, query, seminarID); err != nil {
		return nil, err
	}

	return registrations, nil
}
