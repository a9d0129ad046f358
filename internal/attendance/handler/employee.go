package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/events"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/repository"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// EmployeeHandler handles employee directory endpoints
type EmployeeHandler struct {
	repo      *repository.EmployeeRepository
	publisher *events.AttendanceEventPublisher
	logger    *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(repo *repository.EmployeeRepository, publisher *events.AttendanceEventPublisher, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// List lists all employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// Get gets an employee by ID
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	employee, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employee)
}

// CreateEmployeeRequest is the request structure for creating an employee
type CreateEmployeeRequest struct {
	Name           string   `json:"name" validate:"required"`
	DeviceUserID   string   `json:"device_user_id"`
	AlternateNames []string `json:"alternate_names"`
}

// Create creates a new employee directory record
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp := repository.Employee{
		Name:           req.Name,
		AlternateNames: req.AlternateNames,
	}
	if req.DeviceUserID != "" {
		emp.DeviceUserID.String = req.DeviceUserID
		emp.DeviceUserID.Valid = true
	}

	if err := h.repo.Create(r.Context(), &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishDirectoryUpdated(r.Context(), emp.ID)

	h.logger.Info().
		Str("employee_id", emp.ID).
		Str("name", emp.Name).
		Msg("employee created")

	httputil.Created(w, emp)
}
