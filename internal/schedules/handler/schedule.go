package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"probook/internal/schedules/service"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
	"probook/pkg/model"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log,
	}
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sc, err := h.service.GetSchedule(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var update model.ScheduleUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	sc, err := h.service.Update(r.Context(), ps.ByName("id"), &update, actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) SetClosedDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetClosedDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var update model.ClosedDatesUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetClosedDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	sc, err := h.service.SetClosedDates(r.Context(), ps.ByName("id"), &update, actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetClosedDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "SetClosedDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/professionals/:id/schedule", h.Get)
	router.PUT("/api/v1/professionals/:id/schedule", h.Update)
	router.PUT("/api/v1/professionals/:id/schedule/closed-dates", h.SetClosedDates)
}
