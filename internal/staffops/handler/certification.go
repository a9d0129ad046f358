package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/service"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// CertificationHandler handles certification endpoints
type CertificationHandler struct {
	service *service.StaffOpsService
	logger  *logger.Logger
}

// NewCertificationHandler creates a new certification handler
func NewCertificationHandler(svc *service.StaffOpsService, log *logger.Logger) *CertificationHandler {
	return &CertificationHandler{
		service: svc,
		logger:  log,
	}
}

// CreateCertificationRequest is the request structure for creating a certification
type CreateCertificationRequest struct {
	EmployeeID string     `json:"employee_id" validate:"required,uuid"`
	Name       string     `json:"name" validate:"required"`
	IssuedBy   string     `json:"issued_by" validate:"required"`
	IssuedAt   time.Time  `json:"issued_at" validate:"required"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// Create creates a certification
func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCertificationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	cert := repository.Certification{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		IssuedBy:   req.IssuedBy,
		IssuedAt:   req.IssuedAt,
		ExpiresAt:  req.ExpiresAt,
	}

	if err := h.service.CreateCertification(r.Context(), &cert); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, cert)
}

// Get gets a certification by ID
func (h *CertificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cert, err := h.service.GetCertification(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cert)
}

// ListByEmployee lists an employee's certifications
func (h *CertificationHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	certs, err := h.service.ListCertifications(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, certs)
}

// ListExpiring lists certifications expiring within the horizon in days
// GET /certifications/expiring?days=30
func (h *CertificationHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 {
		days = 30
	}

	certs, err := h.service.ListExpiringCertifications(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, certs)
}

// Delete removes a certification
func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCertification(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
