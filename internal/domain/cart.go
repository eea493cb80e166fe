package domain

import "github.com/shopspring/decimal"

// CartLine is one product-quantity pairing of a normalized cart.
type CartLine struct {
	ProductID      string              `json:"productId"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      decimal.NullDecimal `json:"unitPrice"`
	ProductName    string              `json:"productName,omitempty"`
	ImageURL       string              `json:"imageUrl,omitempty"`
	Size           Size                `json:"size,omitempty"`
	Color          string              `json:"color,omitempty"`
	AvailableStock *int                `json:"availableStock,omitempty"`
}

// Subtotal is quantity times unit price, zero when the price is unknown.
func (l CartLine) Subtotal() decimal.Decimal {
	if !l.UnitPrice.Valid {
		return decimal.Zero
	}
	return l.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	OwnerID string     `json:"ownerId"`
	Lines   []CartLine `json:"lines"`
}

func EmptyCart(ownerID string) Cart {
	return Cart{OwnerID: ownerID, Lines: []CartLine{}}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID and whether it exists.
func (c Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// ItemCount is the sum of line quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Total sums every line subtotal. Lines without a price contribute zero.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clone returns a deep copy so callers cannot alias the synchronizer's view.
func (c Cart) Clone() Cart {
	out := Cart{OwnerID: c.OwnerID, Lines: make([]CartLine, len(c.Lines))}
	for i, l := range c.Lines {
		if l.AvailableStock != nil {
			stock := *l.AvailableStock
			l.AvailableStock = &stock
		}
		out.Lines[i] = l
	}
	return out
}
