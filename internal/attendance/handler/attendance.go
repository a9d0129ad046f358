package handler

import (
	"net/http"
	"time"

	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/service"
	"github.com/wardtrack/wardtrack-backend/pkg/errors"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// AttendanceHandler handles attendance report and ingestion endpoints
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

// Report runs a reconciliation pass and returns the classified punches
// GET /attendance/report?from=...&to=...&employee_id=...
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReportFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.service.Reconcile(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("reconciliation pass failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Summary runs a reconciliation pass and returns only the aggregate totals
// GET /attendance/summary?from=...&to=...&employee_id=...
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReportFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("reconciliation pass failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// PunchRequest is a single punch in an ingestion batch
type PunchRequest struct {
	EmployeeIdentifier string    `json:"employee_identifier" validate:"required"`
	PunchedAt          time.Time `json:"punched_at" validate:"required"`
	Kind               string    `json:"kind" validate:"required,oneof=check_in check_out break_in break_out overtime_in overtime_out"`
}

// IngestRequest is the request structure for manual punch ingestion
type IngestRequest struct {
	Punches []PunchRequest `json:"punches" validate:"required,min=1,dive"`
}

// Ingest stores a batch of punches submitted over HTTP. The same idempotent
// path the device poller uses, for backfills and corrections.
// POST /attendance/punches
func (h *AttendanceHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	punches := make([]reconcile.RawPunch, 0, len(req.Punches))
	for _, p := range req.Punches {
		punches = append(punches, reconcile.RawPunch{
			EmployeeIdentifier: p.EmployeeIdentifier,
			Timestamp:          p.PunchedAt,
			Kind:               reconcile.PunchKind(p.Kind),
		})
	}

	stored, err := h.service.IngestPunches(r.Context(), punches)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]int{
		"submitted": len(punches),
		"stored":    stored,
	})
}

// parseReportFilter reads the range and employee filter from query params.
// Timestamps accept RFC 3339 or a bare date; a bare "to" date is exclusive
// of that day's punches, so callers usually pass the day after.
func parseReportFilter(r *http.Request) (service.ReportFilter, error) {
	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		return service.ReportFilter{}, errors.BadRequest("invalid from parameter: " + err.Error())
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		return service.ReportFilter{}, errors.BadRequest("invalid to parameter: " + err.Error())
	}

	if from.IsZero() || to.IsZero() {
		return service.ReportFilter{}, errors.BadRequest("from and to parameters are required")
	}
	if !to.After(from) {
		return service.ReportFilter{}, errors.BadRequest("to must be after from")
	}

	return service.ReportFilter{
		From:       from,
		To:         to,
		EmployeeID: r.URL.Query().Get("employee_id"),
	}, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
