package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/service"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// ShiftHandler handles shift swap and sell request endpoints
type ShiftHandler struct {
	service *service.StaffOpsService
	logger  *logger.Logger
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(svc *service.StaffOpsService, log *logger.Logger) *ShiftHandler {
	return &ShiftHandler{
		service: svc,
		logger:  log,
	}
}

// CreateShiftRequestBody is the request structure for creating a shift request
type CreateShiftRequestBody struct {
	RequestType   string    `json:"request_type" validate:"required,oneof=swap sell"`
	EmployeeID    string    `json:"employee_id" validate:"required,uuid"`
	CounterpartID *string   `json:"counterpart_id" validate:"omitempty,uuid"`
	ShiftDate     time.Time `json:"shift_date" validate:"required"`
}

// Create creates a shift swap or sell request
func (h *ShiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateShiftRequestBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(body); err != nil {
		httputil.Error(w, err)
		return
	}

	req := repository.ShiftRequest{
		RequestType:   body.RequestType,
		EmployeeID:    body.EmployeeID,
		CounterpartID: body.CounterpartID,
		ShiftDate:     body.ShiftDate,
	}

	if err := h.service.CreateShiftRequest(r.Context(), &req); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, req)
}

// Get gets a shift request by ID
func (h *ShiftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := h.service.GetShiftRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, req)
}

// List lists shift requests
// GET /shift-requests?status=pending
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", repository.RequestStatusPending, repository.RequestStatusApproved, repository.RequestStatusRejected:
	default:
		httputil.Error(w, errors.BadRequest("status must be pending, approved or rejected"))
		return
	}

	requests, err := h.service.ListShiftRequests(r.Context(), status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requests)
}

// DecideRequest is the request structure for a shift request decision
type DecideRequest struct {
	Decision  string `json:"decision" validate:"required,oneof=approved rejected"`
	DecidedBy string `json:"decided_by" validate:"required"`
	Reason    string `json:"reason"`
}

// Decide approves or rejects a pending shift request
func (h *ShiftHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DecideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DecideShiftRequest(r.Context(), id, req.Decision, req.DecidedBy, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	decided, err := h.service.GetShiftRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, decided)
}
