package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kangoro5/leather-walk/internal/cart"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

type CartService interface {
	View(ownerID string) cart.View
	FetchCart(ctx context.Context, ownerID string) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error)
}

type CartAdder interface {
	AddToCart(ctx context.Context, productID string, quantity int) (domain.Cart, error)
}

type CartHandler struct {
	carts   CartService
	adder   CartAdder
	timeout time.Duration
}

func NewCartHandler(carts CartService, adder CartAdder, timeout time.Duration) *CartHandler {
	return &CartHandler{carts: carts, adder: adder, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Cart      domain.Cart     `json:"cart"`
	State     cart.SyncState  `json:"state"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Error     string          `json:"error,omitempty"`
}

func (h *CartHandler) response(ownerID string, err error) CartResponseDTO {
	v := h.carts.View(ownerID)
	resp := CartResponseDTO{
		Cart:      v.Cart,
		State:     v.State,
		ItemCount: v.Cart.ItemCount(),
		Total:     v.Cart.Total(),
		Currency:  domain.Currency,
	}
	if err != nil {
		resp.Error = domain.UserMessage(err, "Failed to update cart. Please try again.")
	}
	return resp
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, _ := identityFrom(r.Context())
	if _, err := h.carts.FetchCart(ctx, identity.ID); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.response(identity.ID, nil))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := h.adder.AddToCart(ctx, req.ProductID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	identity, _ := identityFrom(r.Context())
	respondJSON(w, http.StatusCreated, h.response(identity.ID, nil))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, _ := identityFrom(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.carts.UpdateQuantity(ctx, identity.ID, productID, req.Quantity)
	h.respondMutation(w, identity.ID, err)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, _ := identityFrom(r.Context())
	_, err := h.carts.RemoveItem(ctx, identity.ID, chi.URLParam(r, "product_id"))
	h.respondMutation(w, identity.ID, err)
}

// respondMutation answers a rejected server-side mutation with the resynced cart and
// the error message, so the view shows what the server holds.
func (h *CartHandler) respondMutation(w http.ResponseWriter, ownerID string, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, h.response(ownerID, nil))
		return
	}
	if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsAuthentication(err) {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusConflict, h.response(ownerID, err))
}
