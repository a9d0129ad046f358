package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/events"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/repository"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// ScheduleHandler handles schedule profile endpoints
type ScheduleHandler struct {
	repo      *repository.ScheduleRepository
	publisher *events.AttendanceEventPublisher
	logger    *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(repo *repository.ScheduleRepository, publisher *events.AttendanceEventPublisher, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// List lists all schedule profiles
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, profiles)
}

// Get gets a schedule profile by ID
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, profile)
}

// Create creates a new schedule profile
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var profile repository.ScheduleProfile
	if err := httputil.DecodeJSON(r, &profile); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), &profile); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishProfileCreated(r.Context(), &profile)

	h.logger.Info().
		Str("profile_id", profile.ID).
		Str("schedule_type", profile.ScheduleType).
		Msg("schedule profile created")

	httputil.Created(w, profile)
}

// Update updates a schedule profile
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Fetch the existing profile so a partial JSON body does not zero out
	// columns the repository writes in full
	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.DecodeJSON(r, existing); err != nil {
		httputil.Error(w, err)
		return
	}
	existing.ID = id

	if err := h.repo.Update(r.Context(), existing); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishProfileUpdated(r.Context(), existing)

	httputil.JSON(w, http.StatusOK, existing)
}
