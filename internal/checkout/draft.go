package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildDraft captures cart prices into an order. Every line needs a known price.
func BuildDraft(cart domain.Cart, f Form, shipping decimal.Decimal, key string, now time.Time) (domain.OrderDraft, error) {
	if cart.IsEmpty() {
		return domain.OrderDraft{}, domain.ErrEmptyCart
	}

	draft := domain.OrderDraft{
		OwnerID:        cart.OwnerID,
		Lines:          make([]domain.OrderLine, 0, len(cart.Lines)),
		ShippingInfo:   f.ShippingInfo(),
		PaymentMethod:  f.PaymentMethod,
		ShippingCost:   shipping,
		IdempotencyKey: key,
		CapturedAt:     now,
	}
	if f.PaymentMethod == domain.PaymentMpesa {
		draft.MpesaNumber = strings.TrimSpace(f.MpesaNumber)
	}

	subtotal := decimal.Zero
	for _, l := range cart.Lines {
		if !l.UnitPrice.Valid {
			name := l.ProductName
			if name == "" {
				name = l.ProductID
			}
			return domain.OrderDraft{}, &domain.ValidationError{
				Field:   "cart",
				Message: fmt.Sprintf("The price of %s is unavailable. Please refresh your cart.", name),
			}
		}
		line := domain.OrderLine{
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			PriceSnapshot: l.UnitPrice.Decimal,
		}
		draft.Lines = append(draft.Lines, line)
		subtotal = subtotal.Add(line.Subtotal())
	}

	draft.Subtotal = subtotal
	draft.Total = subtotal.Add(shipping)
	return draft, nil
}
