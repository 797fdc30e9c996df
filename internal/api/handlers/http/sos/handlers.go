package sos

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"helphop/internal/domain"
	"helphop/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Intake interface {
	Submit(ctx context.Context, req domain.SubmitSOSRequest) (domain.SubmitSOSResult, error)
}

type Lifecycle interface {
	AssignRescuer(ctx context.Context, id uuid.UUID, rescuerID string) (*domain.Incident, error)
	Accept(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Reject(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Resolve(ctx context.Context, id uuid.UUID) (*domain.Incident, error)

	ListPending(ctx context.Context) ([]*domain.Incident, error)
	List(ctx context.Context, page, limit int) ([]*domain.Incident, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Incident, error)
}

type StatsGetter interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.IncidentStats, error)
}

type Handler struct {
	logger    *slog.Logger
	Intake    Intake
	Lifecycle Lifecycle
	Stats     StatsGetter
}

func NewHandler(logger *slog.Logger, intake Intake, lifecycle Lifecycle, stats StatsGetter) *Handler {
	return &Handler{
		logger:    logger,
		Intake:    intake,
		Lifecycle: lifecycle,
		Stats:     stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) SubmitSOS(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SubmitSOS", slog.String("remote", r.RemoteAddr))

	var req domain.SubmitSOSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and location {lat, lng} are required"})
		return
	}

	result, err := h.Intake.Submit(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if result.Rejected {
		l.Info("sos rejected",
			slog.String("user_id", req.UserID),
			slog.Float64("distance_km", result.DistanceKm),
		)
		h.writeJSON(w, http.StatusOK, map[string]any{
			"status":      "rejected",
			"reason":      result.Reason,
			"distance_km": formatKm(result.DistanceKm),
		})
		return
	}

	l.Info("sos created",
		slog.String("incident_id", result.Incident.ID.String()),
		slog.String("direction", result.Direction),
	)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "SOS created & broadcasted",
		"distance_km": formatKm(result.DistanceKm),
		"direction":   result.Direction,
		"incident":    result.Incident,
	})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("ListPending", slog.String("remote", r.RemoteAddr))

	incidents, err := h.Lifecycle.ListPending(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"incidents": emptyIfNil(incidents)})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("ListAll", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
		l.Warn("limit capped", slog.Int("limit", limit))
	}

	incidents, total, err := h.Lifecycle.List(r.Context(), page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incidents listed", slog.Int("count", len(incidents)), slog.Int64("total", total))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"incidents": emptyIfNil(incidents),
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	userID := chi.URLParam(r, "userId")
	if userID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing userId"})
		return
	}
	l.Debug("ListByUser", slog.String("user_id", userID))

	incidents, err := h.Lifecycle.ListByUser(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"incidents": emptyIfNil(incidents)})
}

func (h *Handler) AssignRescuer(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AssignRescuer", slog.String("remote", r.RemoteAddr))

	var req domain.AssignRescuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "incident_id and rescuer_id are required"})
		return
	}

	id, err := uuid.Parse(req.IncidentID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid incident_id"})
		return
	}

	incident, err := h.Lifecycle.AssignRescuer(r.Context(), id, req.RescuerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("rescuer assigned",
		slog.String("incident_id", id.String()),
		slog.String("rescuer_id", req.RescuerID),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Incident accepted",
		"incident": incident,
	})
}

func (h *Handler) AcceptByID(w http.ResponseWriter, r *http.Request) {
	h.transitionByID(w, r, h.Lifecycle.Accept, "Incident accepted")
}

func (h *Handler) RejectByID(w http.ResponseWriter, r *http.Request) {
	h.transitionByID(w, r, h.Lifecycle.Reject, "Incident rejected")
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transitionByID(w, r, h.Lifecycle.Resolve, "Incident resolved")
}

func (h *Handler) transitionByID(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, uuid.UUID) (*domain.Incident, error),
	message string,
) {
	l := h.log(r)

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	incident, err := op(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident transitioned",
		slog.String("incident_id", id.String()),
		slog.String("status", string(incident.Status)),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":  message,
		"incident": incident,
	})
}

func (h *Handler) SOSStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SOSStats", slog.String("query", r.URL.RawQuery))

	minutesStr := r.URL.Query().Get("minutes")
	if minutesStr == "" {
		minutesStr = "60"
	}

	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 || minutes > 1440 {
		l.Warn("invalid minutes", slog.String("minutes", minutesStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "minutes must be 1-1440"})
		return
	}

	stats, err := h.Stats.GetStats(r.Context(), domain.StatsRequest{Minutes: minutes})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}
