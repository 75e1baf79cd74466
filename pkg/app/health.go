package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"probook/pkg/client"
	httputil "probook/pkg/http"
	"probook/pkg/logger"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthHandler serves liveness and readiness. Readiness pings every store
// the process is connected to.
type HealthHandler struct {
	client *client.Client
	log    *logger.Logger
}

func NewHealthHandler(c *client.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		client: c,
		log:    log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := h.ping(ctx)
	status, code := "ready", http.StatusOK
	for name, state := range deps {
		if state != "ok" {
			h.log.Error("Dependency health check failed", "dependency", name, "path", r.URL.Path)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	if err := httputil.WriteJSON(w, code, HealthResponse{Status: status, Dependencies: deps}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) ping(ctx context.Context) map[string]string {
	deps := map[string]string{}
	if h.client == nil {
		return deps
	}
	if h.client.Mongo != nil {
		deps["mongo"] = state(h.client.Mongo.Ping(ctx, nil))
	}
	if h.client.Postgres != nil {
		deps["postgres"] = state(h.client.Postgres.Ping(ctx))
	}
	if h.client.Redis != nil {
		deps["redis"] = state(h.client.Redis.Ping(ctx).Err())
	}
	return deps
}

func state(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
