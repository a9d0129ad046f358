package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/service"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// SeminarHandler handles seminar endpoints
type SeminarHandler struct {
	service *service.StaffOpsService
	logger  *logger.Logger
}

// NewSeminarHandler creates a new seminar handler
func NewSeminarHandler(svc *service.StaffOpsService, log *logger.Logger) *SeminarHandler {
	return &SeminarHandler{
		service: svc,
		logger:  log,
	}
}

// CreateSeminarRequest is the request structure for creating a seminar
type CreateSeminarRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	HeldAt      time.Time `json:"held_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"min=0"`
}

// Create creates a seminar
func (h *SeminarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSeminarRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	seminar := repository.Seminar{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		HeldAt:      req.HeldAt,
		Capacity:    req.Capacity,
	}

	if err := h.service.CreateSeminar(r.Context(), &seminar); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, seminar)
}

// Get gets a seminar by ID
func (h *SeminarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	seminar, err := h.service.GetSeminar(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, seminar)
}

// List lists seminars
func (h *SeminarHandler) List(w http.ResponseWriter, r *http.Request) {
	seminars, err := h.service.ListSeminars(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, seminars)
}

// RegisterRequest is the request structure for a seminar registration
type RegisterRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

// Register registers an employee for a seminar
func (h *SeminarHandler) Register(w http.ResponseWriter, r *http.Request) {
	seminarID := chi.URLParam(r, "id")

	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.RegisterForSeminar(r.Context(), seminarID, req.EmployeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]string{
		"seminar_id":  seminarID,
		"employee_id": req.EmployeeID,
	})
}

// ListRegistrations lists registrations for a seminar
func (h *SeminarHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	seminarID := chi.URLParam(r, "id")

	registrations, err := h.service.ListSeminarRegistrations(r.Context(), seminarID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, registrations)
}
