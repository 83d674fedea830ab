package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/catalog"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/events"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// ProductLookup resolves catalog products for cart additions.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

// View is the JSON representation of a cart session.
type View struct {
	CartID            string        `json:"cartId"`
	Lines             []Line        `json:"lines"`
	TotalCount        int           `json:"totalCount"`
	TotalPrice        pricing.Money `json:"totalPrice"`
	TotalPriceDisplay string        `json:"totalPriceDisplay"`
}

// AddItemRequest is the payload of POST /carts/{cartID}/items. A zero quantity
// means one unit.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// UpdateItemRequest is the payload of PATCH /carts/{cartID}/items/{productID}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Handler exposes the cart session endpoints.
type Handler struct {
	sessions *Sessions
	products ProductLookup
	validate *common.Validator
	events   *events.Bus
	logger   zerolog.Logger
	currency string
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Sessions       *Sessions
	Products       ProductLookup
	Validator      *common.Validator
	Events         *events.Bus
	Logger         zerolog.Logger
	CurrencySymbol string
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	currency := cfg.CurrencySymbol
	if currency == "" {
		currency = "€"
	}
	return &Handler{
		sessions: cfg.Sessions,
		products: cfg.Products,
		validate: v,
		events:   cfg.Events,
		logger:   cfg.Logger,
		currency: currency,
	}
}

// SessionContext stores the cart id of the matched route on the request context
// so downstream middleware (idempotency, logging) can scope by it.
func SessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(chi.URLParam(r, "cartID")); id != "" {
			r = r.WithContext(common.WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return
	}
	id, store := h.sessions.New()
	obs.CountCartMutation("create")
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.view(id, store)})
}

// Get handles GET /api/v1/carts/{cartID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, store, ok := h.session(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// Resume handles PUT /api/v1/carts/{cartID}. It reattaches a client-held cart id,
// starting an empty cart under that id when the session is gone.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "cartID"))
	store, err := h.sessions.Open(id)
	if err != nil {
		if errors.Is(err, ErrInvalidSessionID) {
			common.WriteError(w, common.BadRequest("cartId", "cart id must be a UUID", err))
			return
		}
		common.WriteError(w, err)
		return
	}
	obs.CountCartMutation("resume")
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// AddItem handles POST /api/v1/carts/{cartID}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, store, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.products == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	var req AddItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.WriteError(w, err)
		return
	}
	product, err := h.products.Product(r.Context(), req.ProductID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	store.AddToCart(Line{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		ImageRef:  product.ImageRef,
		Quantity:  product.ClampQuantity(req.Quantity),
	})
	obs.CountCartMutation("add")
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// UpdateItem handles PATCH /api/v1/carts/{cartID}/items/{productID}. Quantities
// below one leave the cart untouched.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, store, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := catalog.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req UpdateItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	store.UpdateQuantity(productID, req.Quantity)
	obs.CountCartMutation("update")
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// RemoveItem handles DELETE /api/v1/carts/{cartID}/items/{productID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, store, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := catalog.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	store.RemoveFromCart(productID)
	obs.CountCartMutation("remove")
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// Clear handles DELETE /api/v1/carts/{cartID}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id, store, ok := h.session(w, r)
	if !ok {
		return
	}
	lines := len(store.Lines())
	store.ClearCart()
	obs.CountCartMutation("clear")
	if h.events != nil {
		if _, err := h.events.Emit(r.Context(), events.TopicCartCleared, id, map[string]int{"lines": lines}); err != nil {
			h.logger.Warn().Err(err).Str("cart_id", id).Msg("emit cart cleared event")
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, store)})
}

// End handles DELETE /api/v1/carts/{cartID}/session and forgets the cart entirely.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sessions.Drop(id)
	obs.CountCartMutation("end")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *Store, bool) {
	if h.sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return "", nil, false
	}
	id := strings.TrimSpace(chi.URLParam(r, "cartID"))
	store, err := h.sessions.Get(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			common.WriteError(w, common.NotFound("CART_NOT_FOUND", "cart not found", err).WithDetails(map[string]any{"cartId": id}))
			return "", nil, false
		}
		common.WriteError(w, err)
		return "", nil, false
	}
	return id, store, true
}

func (h *Handler) view(id string, store *Store) View {
	snap := store.Snapshot()
	return View{
		CartID:            id,
		Lines:             snap.Lines,
		TotalCount:        snap.TotalCount,
		TotalPrice:        snap.TotalPrice,
		TotalPriceDisplay: pricing.Format(snap.TotalPrice, h.currency),
	}
}
