package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"probook/internal/catalog/service"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
	"probook/pkg/model"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var svc model.Service
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.service.Create(r.Context(), ps.ByName("id"), &svc, actor)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// ListByProfessional returns active services unless ?all=true is given.
func (h *CatalogHandler) ListByProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	activeOnly := r.URL.Query().Get("all") != "true"

	services, err := h.service.ListByProfessional(r.Context(), ps.ByName("id"), activeOnly)
	if err != nil {
		h.writeError(w, "ListByProfessional", err)
		return
	}

	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByProfessional", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.ServiceUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	svc, err := h.service.Update(r.Context(), ps.ByName("id"), &update, actor)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	if err := h.service.Deactivate(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/professionals/:id/services", h.Create)
	router.GET("/api/v1/professionals/:id/services", h.ListByProfessional)
	router.GET("/api/v1/services/:id", h.GetByID)
	router.PATCH("/api/v1/services/:id", h.Update)
	router.DELETE("/api/v1/services/:id", h.Deactivate)
}
