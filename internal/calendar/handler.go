package calendar

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "carebook/pkg/errors"
	httputil "carebook/pkg/http"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type moveRequest struct {
	Kind            model.CalendarKind `json:"kind"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	ExpectedVersion int64              `json:"expected_version"`
}

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Load(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid start format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid end format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	events, err := h.service.Load(r.Context(), query.Get("worker_id"), start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "Load", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Move", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	events, err := h.service.Move(r.Context(), id, req.Kind, req.StartTime, req.EndTime, req.ExpectedVersion)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Move", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "Move", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/calendar", h.Load)
	router.PATCH("/api/v1/calendar/id/:id/move", h.Move)
}
