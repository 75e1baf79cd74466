package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"probook/internal/reviews/service"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
	"probook/pkg/model"
)

type ReviewHandler struct {
	service service.ReviewService
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log,
	}
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	var req model.ReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	review, err := h.service.Submit(r.Context(), ps.ByName("id"), actor, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReviewHandler) ListByProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByProfessional", err)
		return
	}

	reviews, total, err := h.service.ListByProfessional(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByProfessional", err)
		return
	}

	if err := httputil.WritePaginated(w, reviews, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByProfessional", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations/:id/review", h.Submit)
	router.GET("/api/v1/professionals/:id/reviews", h.ListByProfessional)
}
