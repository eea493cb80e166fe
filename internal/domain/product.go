package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"` // units in stock
	ImageURL    string          `json:"imageUrl,omitempty"`
	Color       string          `json:"color,omitempty"`
	Size        Size            `json:"size,omitempty"`
}

// Size is a shoe size. The API sends it either as a number or as a string.
type Size string

func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Size(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("size must be a number or string: %w", err)
	}
	*s = Size(n.String())
	return nil
}

func (s Size) String() string {
	return string(s)
}
