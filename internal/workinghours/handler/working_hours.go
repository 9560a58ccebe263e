package handler

import (
	"encoding/json"
	"net/http"

	"carebook/internal/workinghours/service"
	httputil "carebook/pkg/http"
	"carebook/pkg/logger"
	"carebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkingHoursHandler struct {
	service service.WorkingHoursService
	log     *logger.Logger
}

func NewWorkingHoursHandler(service service.WorkingHoursService, log *logger.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{
		service: service,
		log:     log,
	}
}

func (h *WorkingHoursHandler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entry model.WorkingHours
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Save", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Save(r.Context(), &entry); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Save", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "Save", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingHoursHandler) GetByWorkerAndDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	workerID := ps.ByName("workerId")
	workDate := ps.ByName("date")

	entry, err := h.service.GetByWorkerAndDate(r.Context(), workerID, workDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByWorkerAndDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByWorkerAndDate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingHoursHandler) ListByWorker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	workerID := ps.ByName("workerId")
	query := r.URL.Query()

	entries, err := h.service.ListByWorker(r.Context(), workerID, query.Get("from"), query.Get("to"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByWorker", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByWorker", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingHoursHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/working-hours", h.Save)
	router.GET("/api/v1/working-hours/worker/:workerId", h.ListByWorker)
	router.GET("/api/v1/working-hours/worker/:workerId/date/:date", h.GetByWorkerAndDate)
}
