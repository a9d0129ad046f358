package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
)

// Employee is a persisted directory record
type Employee struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	DeviceUserID   sql.NullString `db:"device_user_id" json:"device_user_id"`
	AlternateNames pq.StringArray `db:"alternate_names" json:"alternate_names"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// EmployeeRepository handles employee directory persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee record
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}

	query := `
		INSERT INTO employees (id, name, device_user_id, alternate_names, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query, emp.ID, emp.Name, emp.DeviceUserID, emp.AlternateNames)
	return err
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	query := `
		SELECT id, name, device_user_id, alternate_names, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("employee")
		}
		return nil, err
	}

	return &emp, nil
}

// List returns all employee records
func (r *EmployeeRepository) List(ctx context.Context) ([]Employee, error) {
	query := `
		SELECT id, name, device_user_id, alternate_names, created_at, updated_at
		FROM employees
		ORDER BY created_at ASC
	`

	var employees []Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, err
	}

	return employees, nil
}

// Directory returns the directory snapshot in the form the reconciliation
// engine consumes
func (r *EmployeeRepository) Directory(ctx context.Context) ([]reconcile.Employee, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	directory := make([]reconcile.Employee, 0, len(rows))
	for _, row := range rows {
		emp := reconcile.Employee{
			ID:             row.ID,
			Name:           row.Name,
			AlternateNames: row.AlternateNames,
		}
		if row.DeviceUserID.Valid {
			emp.DeviceUserID = row.DeviceUserID.String
		}
		directory = append(directory, emp)
	}

	return directory, nil
}
