package checkout

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/cart"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	service  *Service
	sessions *cart.Sessions
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Sessions *cart.Sessions
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, sessions: cfg.Sessions}
}

// Checkout handles POST /api/v1/carts/{cartID}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	cartID := strings.TrimSpace(chi.URLParam(r, "cartID"))
	store, err := h.sessions.Get(cartID)
	if err != nil {
		if errors.Is(err, cart.ErrSessionNotFound) {
			common.WriteError(w, common.NotFound("CART_NOT_FOUND", "cart not found", err).WithDetails(map[string]any{"cartId": cartID}))
			return
		}
		common.WriteError(w, err)
		return
	}
	var payload Customer
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.service.Checkout(r.Context(), cartID, store, payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
