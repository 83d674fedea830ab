package newsletter

import (
	"net/http"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
)

// Handler exposes the newsletter endpoint.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Subscribe handles POST /api/v1/newsletter/subscriptions.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "newsletter service not configured", nil)
		return
	}
	var req SubscribeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	sub, err := h.service.Subscribe(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	status := http.StatusCreated
	if sub.AlreadySubscribed {
		status = http.StatusOK
	}
	common.JSON(w, status, map[string]any{"data": sub})
}
