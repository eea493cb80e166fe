package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

// populatedProduct is the shape of productId when the server populates the reference.
type populatedProduct struct {
	ID       string              `json:"_id"`
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Quantity *int                `json:"quantity"`
	ImageURL string              `json:"imageUrl"`
	Size     domain.Size         `json:"size"`
	Color    string              `json:"color"`
}

// Normalize turns a raw server cart into the canonical cart. Lines whose product
// reference is null or unresolvable, or whose quantity is not a positive integer, are
// dropped. Duplicate product ids are merged into the first occurrence. It returns the
// number of dropped lines.
func Normalize(ownerID string, payload *api.CartPayload) (domain.Cart, int) {
	cart := domain.EmptyCart(ownerID)
	if payload == nil {
		return cart, 0
	}

	dropped := 0
	index := make(map[string]int, len(payload.Products))
	for _, raw := range payload.Products {
		line, ok := normalizeLine(raw)
		if !ok {
			dropped++
			continue
		}
		if i, dup := index[line.ProductID]; dup {
			merged := &cart.Lines[i]
			merged.Quantity += line.Quantity
			fillMissing(merged, line)
			continue
		}
		index[line.ProductID] = len(cart.Lines)
		cart.Lines = append(cart.Lines, line)
	}
	return cart, dropped
}

func normalizeLine(raw api.RawCartLine) (domain.CartLine, bool) {
	qty, ok := parseQuantity(raw.Quantity)
	if !ok || qty < 1 {
		return domain.CartLine{}, false
	}

	ref := bytes.TrimSpace(raw.ProductID)
	if len(ref) == 0 || bytes.Equal(ref, []byte("null")) {
		return domain.CartLine{}, false
	}

	switch ref[0] {
	case '{':
		var p populatedProduct
		if err := json.Unmarshal(ref, &p); err != nil || p.ID == "" {
			return domain.CartLine{}, false
		}
		return domain.CartLine{
			ProductID:      p.ID,
			Quantity:       qty,
			UnitPrice:      p.Price,
			ProductName:    p.Name,
			ImageURL:       p.ImageURL,
			Size:           p.Size,
			Color:          p.Color,
			AvailableStock: p.Quantity,
		}, true
	case '"':
		var id string
		if err := json.Unmarshal(ref, &id); err != nil || strings.TrimSpace(id) == "" {
			return domain.CartLine{}, false
		}
		return domain.CartLine{ProductID: id, Quantity: qty}, true
	default:
		var n json.Number
		if err := json.Unmarshal(ref, &n); err != nil {
			return domain.CartLine{}, false
		}
		return domain.CartLine{ProductID: n.String(), Quantity: qty}, true
	}
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		raw = []byte(s)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// fillMissing copies product details from src into dst where dst has none.
func fillMissing(dst *domain.CartLine, src domain.CartLine) {
	if !dst.UnitPrice.Valid && src.UnitPrice.Valid {
		dst.UnitPrice = src.UnitPrice
	}
	if dst.ProductName == "" {
		dst.ProductName = src.ProductName
	}
	if dst.ImageURL == "" {
		dst.ImageURL = src.ImageURL
	}
	if dst.Size == "" {
		dst.Size = src.Size
	}
	if dst.Color == "" {
		dst.Color = src.Color
	}
	if dst.AvailableStock == nil && src.AvailableStock != nil {
		stock := *src.AvailableStock
		dst.AvailableStock = &stock
	}
}

// enrich fills bare-id lines from a known product.
func enrich(line *domain.CartLine, p domain.Product) {
	stock := p.Quantity
	fillMissing(line, domain.CartLine{
		UnitPrice:      decimal.NewNullDecimal(p.Price),
		ProductName:    p.Name,
		ImageURL:       p.ImageURL,
		Size:           p.Size,
		Color:          p.Color,
		AvailableStock: &stock,
	})
}

func lineRefs(c domain.Cart) []api.LineRef {
	refs := make([]api.LineRef, 0, len(c.Lines))
	for _, l := range c.Lines {
		refs = append(refs, api.LineRef{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return refs
}
