package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

type createOrderRequest struct {
	UserID         string               `json:"userId"`
	Products       []domain.OrderLine   `json:"products"`
	ShippingInfo   domain.ShippingInfo  `json:"shippingInfo"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod"`
	MpesaNumber    *string              `json:"mpesaNumber"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	SubtotalAmount decimal.Decimal      `json:"subtotalAmount"`
	ShippingCost   decimal.Decimal      `json:"shippingCost"`
}

// Create posts draft. The draft's idempotency key is sent as a header.
func (o *OrderClient) Create(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	body := createOrderRequest{
		UserID:         draft.OwnerID,
		Products:       draft.Lines,
		ShippingInfo:   draft.ShippingInfo,
		PaymentMethod:  draft.PaymentMethod,
		TotalAmount:    draft.Total,
		SubtotalAmount: draft.Subtotal,
		ShippingCost:   draft.ShippingCost,
	}
	if draft.PaymentMethod == domain.PaymentMpesa {
		mpesa := draft.MpesaNumber
		body.MpesaNumber = &mpesa
	}
	req, err := jsonRequest("POST /orders", "order", http.MethodPost, "/orders", body, true)
	if err != nil {
		return nil, err
	}
	if draft.IdempotencyKey != "" {
		ctx = WithIdempotencyKey(ctx, draft.IdempotencyKey)
	}

	var raw json.RawMessage
	if err := o.c.call(ctx, req, &raw); err != nil {
		return nil, err
	}
	var created domain.Order
	// some deployments wrap the order as {"order": {...}}
	var wrapped struct {
		Order *domain.Order `json:"order"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Order != nil {
		return wrapped.Order, nil
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, &domain.UnexpectedResponseError{Op: req.op, Reason: err.Error()}
	}
	return &created, nil
}

// List returns all orders, or only userID's orders when userID is set.
func (o *OrderClient) List(ctx context.Context, userID string) ([]domain.Order, error) {
	req := request{op: "GET /orders", resource: "orders", method: http.MethodGet, path: "/orders", auth: true}
	if userID != "" {
		req.query = url.Values{"userId": []string{userID}}
	}
	var orders []domain.Order
	if err := o.c.call(ctx, req, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (o *OrderClient) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	req, err := jsonRequest("PATCH /orders/:id", "order", http.MethodPatch, pathID("/orders", id), statusRequest{Status: status}, true)
	if err != nil {
		return nil, err
	}
	var updated domain.Order
	if err := o.c.call(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
