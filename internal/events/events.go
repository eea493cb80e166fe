package events

import (
	"context"
	"time"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

const OrderPlacedType = "OrderPlaced"

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlaced is emitted once per accepted order.
type OrderPlaced struct {
	EventID       string               `json:"event_id"`
	EventType     string               `json:"event_type"`
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	Items         []OrderItem          `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal_amount"`
	ShippingCost  decimal.Decimal      `json:"shipping_cost"`
	Total         decimal.Decimal      `json:"total_amount"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PlacedAt      time.Time            `json:"placed_at"`
}

// Key orders events per order on partitioned transports.
func (e OrderPlaced) Key() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.EventID
}

func NewOrderPlaced(eventID string, order *domain.Order, draft domain.OrderDraft) OrderPlaced {
	ev := OrderPlaced{
		EventID:       eventID,
		EventType:     OrderPlacedType,
		UserID:        draft.OwnerID,
		Subtotal:      draft.Subtotal,
		ShippingCost:  draft.ShippingCost,
		Total:         draft.Total,
		Currency:      domain.Currency,
		PaymentMethod: draft.PaymentMethod,
		PlacedAt:      time.Now().UTC(),
		Items:         make([]OrderItem, 0, len(draft.Lines)),
	}
	if order != nil {
		ev.OrderID = order.ID
	}
	for _, l := range draft.Lines {
		ev.Items = append(ev.Items, OrderItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.PriceSnapshot})
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderPlaced) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderPlaced) error { return nil }
func (Nop) Close() error                               { return nil }
