package handler

import (
	"net/http"
	"strconv"

	"probook/internal/lifecycle"
	"probook/internal/reservations/service"
	apperrors "probook/pkg/errors"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
	"probook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	res, err := h.service.Create(r.Context(), &req, actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, res); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	res, err := h.service.GetForActor(r.Context(), ps.ByName("id"), actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Transition returns a handler for one lifecycle action. Complete accepts
// allow_early=true, honoured only for manual bookings.
func (h *ReservationHandler) Transition(action lifecycle.Action) httprouter.Handle {
	name := "Transition:" + string(action)
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, err := httputil.ActorFromRequest(r)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
			}
			return
		}

		var opts lifecycle.Options
		if action == lifecycle.Complete {
			if s := r.URL.Query().Get("allow_early"); s != "" {
				allow, err := strconv.ParseBool(s)
				if err != nil {
					if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid allow_early parameter: "+s)); writeErr != nil {
						h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
					}
					return
				}
				opts.AllowEarlyCompletion = allow
			}
		}

		result, err := h.service.Transition(r.Context(), ps.ByName("id"), action, actor, opts)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
			}
			return
		}

		if err := httputil.WriteSuccess(w, result); err != nil {
			h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
		}
	}
}

func (h *ReservationHandler) ListForProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, "ListForProfessional", func(filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
		return h.service.ListForProfessional(r.Context(), ps.ByName("id"), filter, actor)
	})
}

func (h *ReservationHandler) ListForClient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, "ListForClient", func(filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
		return h.service.ListForClient(r.Context(), ps.ByName("id"), filter, actor)
	})
}

func (h *ReservationHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fetch func(model.ReservationFilter, model.Actor) ([]*model.Reservation, int64, error),
) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := filterFromRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, total, err := fetch(filter, actor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, filter.Limit, filter.Offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

// filterFromRequest reads status (repeatable), from, to, limit and offset.
func filterFromRequest(r *http.Request) (model.ReservationFilter, error) {
	var filter model.ReservationFilter

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	filter.Offset = offset

	for _, s := range r.URL.Query()["status"] {
		filter.Statuses = append(filter.Statuses, model.ReservationStatus(s))
	}

	if filter.From, err = httputil.QueryTime(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = httputil.QueryTime(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/:id", h.GetByID)
	router.POST("/api/v1/reservations/:id/confirm", h.Transition(lifecycle.Confirm))
	router.POST("/api/v1/reservations/:id/reject", h.Transition(lifecycle.Reject))
	router.POST("/api/v1/reservations/:id/cancel", h.Transition(lifecycle.Cancel))
	router.POST("/api/v1/reservations/:id/complete", h.Transition(lifecycle.Complete))
	router.GET("/api/v1/professionals/:id/reservations", h.ListForProfessional)
	router.GET("/api/v1/clients/:id/reservations", h.ListForClient)
}
