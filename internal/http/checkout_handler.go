package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kangoro5/leather-walk/internal/checkout"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	Snapshot() checkout.Snapshot
	ShippingCost() decimal.Decimal
	ResetForm() checkout.Form
	Submit(ctx context.Context, f checkout.Form) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(c CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, timeout: timeout}
}

type CheckoutResponseDTO struct {
	checkout.Snapshot
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Currency     string          `json:"currency"`
}

func (h *CheckoutHandler) response() CheckoutResponseDTO {
	return CheckoutResponseDTO{
		Snapshot:     h.checkout.Snapshot(),
		ShippingCost: h.checkout.ShippingCost(),
		Currency:     domain.Currency,
	}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.response())
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form checkout.Form
	if !decodeJSON(w, r, &form) {
		return
	}
	if _, err := h.checkout.Submit(ctx, form); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.response())
}

// POST /api/v1/checkout/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.checkout.ResetForm()
	respondJSON(w, http.StatusOK, h.response())
}
