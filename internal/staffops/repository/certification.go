package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
)

// Certification is a professional certification held by an employee
type Certification struct {
	ID         string     `db:"id" json:"id"`
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	Name       string     `db:"name" json:"name"`
	IssuedBy   string     `db:"issued_by" json:"issued_by"`
	IssuedAt   time.Time  `db:"issued_at" json:"issued_at"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// CertificationRepository handles certification persistence
type CertificationRepository struct {
	db *database.DB
}

// NewCertificationRepository creates a new certification repository
func NewCertificationRepository(db *database.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

// Create inserts a new certification
func (r *CertificationRepository) Create(ctx context.Context, cert *Certification) error {
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}

	query := `
		INSERT INTO certifications (id, employee_id, name, issued_by, issued_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		cert.ID, cert.EmployeeID, cert.Name, cert.IssuedBy, cert.IssuedAt, cert.ExpiresAt)
	return err
}

// GetByID gets a certification by ID
func (r *CertificationRepository) GetByID(ctx context.Context, id string) (*Certification, error) {
	var cert Certification
	query := `
		SELECT id, employee_id, name, issued_by, issued_at, expires_at, created_at, updated_at
		FROM certifications
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("certification")
		}
		return nil, err
	}

	return &cert, nil
}

// ListByEmployee returns all certifications for an employee
func (r *CertificationRepository) ListByEmployee(ctx context.Context, employeeID string) ([]Certification, error) {
	query := `
		SELECT id, employee_id, name, issued_by, issued_at, expires_at, created_at, updated_at
		FROM certifications
		WHERE employee_id = $1
		ORDER BY issued_at DESC
	`

	var certs []Certification
	if err := r.db.SelectContext(ctx, &certs, query, employeeID); err != nil {
		return nil, err
	}

	return certs, nil
}

// ListExpiring returns certifications that expire within the given horizon,
// soonest first. Certifications with no expiry never appear.
func (r *CertificationRepository) ListExpiring(ctx context.Context, within time.Duration) ([]Certification, error) {
	query := `
		SELECT id, employee_id, name, issued_by, issued_at, expires_at, created_at, updated_at
		FROM certifications
		WHERE expires_at IS NOT NULL AND expires_at <= $1 AND expires_at > NOW()
		ORDER BY expires_at ASC
	`

	var certs []Certification
	if err := r.db.SelectContext(ctx, &certs, query, time.Now().Add(within)); err != nil {
		return nil, err
	}

	return certs, nil
}

// Delete removes a certification
func (r *CertificationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM certifications WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound("certification")
	}

	return nil
}
