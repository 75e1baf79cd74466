package handler

import (
	"net/http"

	"probook/internal/reservations/service"
	apperrors "probook/pkg/errors"
	httputil "probook/pkg/http"
	"probook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// AvailabilityHandler serves the read-only calendar queries. Answers are
// advisory; only reservation creation is authoritative.
type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Windows(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Windows", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	windows, err := h.service.Windows(r.Context(), ps.ByName("id"), date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Windows", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, windows); err != nil {
		h.log.Error("failed to write success response", "handler", "Windows", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	minutes, err := httputil.QueryInt(r, "duration_minutes")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	list, err := h.service.Slots(r.Context(), service.SlotQuery{
		ProfessionalID:  ps.ByName("id"),
		Date:            date,
		DurationMinutes: minutes,
		ServiceID:       r.URL.Query().Get("service_id"),
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Durations(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err := httputil.QueryTime(r, "start")
	if err == nil && start == nil {
		err = apperrors.InvalidInput("start query parameter is required")
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Durations", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	options, err := h.service.DurationOptions(r.Context(), ps.ByName("id"), *start)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Durations", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"start": start.UTC(), "duration_minutes": options}); err != nil {
		h.log.Error("failed to write success response", "handler", "Durations", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) IsFree(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err := httputil.QueryTime(r, "start")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "IsFree", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	end, err := httputil.QueryTime(r, "end")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "IsFree", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if start == nil || end == nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("start and end query parameters are required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "IsFree", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	free, err := h.service.IsFree(r.Context(), ps.ByName("id"), *start, *end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "IsFree", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"professional_id": ps.ByName("id"),
		"start":           start.UTC(),
		"end":             end.UTC(),
		"free":            free,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "IsFree", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/professionals/:id/windows", h.Windows)
	router.GET("/api/v1/professionals/:id/slots", h.Slots)
	router.GET("/api/v1/professionals/:id/durations", h.Durations)
	router.GET("/api/v1/professionals/:id/availability", h.IsFree)
}
