package availability

import (
	"encoding/json"
	"net/http"

	httputil "carebook/pkg/http"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type checkRequest struct {
	WorkerID string             `json:"worker_id"`
	Windows  []model.TimeWindow `json:"windows"`
}

type rankRequest struct {
	WorkerIDs []string           `json:"worker_ids"`
	Windows   []model.TimeWindow `json:"windows"`
}

type Handler struct {
	evaluator *Evaluator
	log       *logger.Logger
}

func NewHandler(evaluator *Evaluator, log *logger.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		log:       log,
	}
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.evaluator.Evaluate(r.Context(), req.WorkerID, req.Windows)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) Rank(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Rank", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	results, err := h.evaluator.Rank(r.Context(), req.WorkerIDs, req.Windows)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Rank", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "Rank", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability/check", h.Check)
	router.POST("/api/v1/availability/rank", h.Rank)
}
