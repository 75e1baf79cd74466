package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"probook/internal/professionals/service"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
	"probook/pkg/model"
)

type ProfessionalHandler struct {
	service service.ProfessionalService
	log     *logger.Logger
}

func NewProfessionalHandler(service service.ProfessionalService, log *logger.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{
		service: service,
		log:     log,
	}
}

func (h *ProfessionalHandler) Onboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pro model.Professional
	if err := httputil.DecodeJSON(r, &pro); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Onboard", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Onboard(r.Context(), &pro); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Onboard", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, pro); err != nil {
		h.log.Error("failed to write created response", "handler", "Onboard", "operation", "WriteCreated", "error", err)
	}
}

func (h *ProfessionalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pro, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, pro); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfessionalHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var updates model.ProfessionalUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	pro, err := h.service.Update(r.Context(), ps.ByName("id"), &updates, actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, pro); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfessionalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/professionals", h.Onboard)
	router.GET("/api/v1/professionals/:id", h.GetByID)
	router.PATCH("/api/v1/professionals/:id", h.Update)
}
