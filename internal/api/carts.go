package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient {
	return &CartClient{c: c}
}

// CartPayload is the cart exactly as the server sends it. ProductID may be a bare id,
// a populated product object or null, so it is left raw for normalization.
type CartPayload struct {
	Products []RawCartLine `json:"products"`
}

type RawCartLine struct {
	ProductID json.RawMessage `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

// LineRef is one line of a replace or add request.
type LineRef struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type replaceCartRequest struct {
	Products []LineRef `json:"products"`
}

func (cc *CartClient) Get(ctx context.Context, ownerID string) (*CartPayload, error) {
	req := request{op: "GET /carts/:userId", resource: "cart", method: http.MethodGet, path: pathID("/carts", ownerID), auth: true}
	var payload CartPayload
	if err := cc.c.call(ctx, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Replace overwrites the whole server cart with lines.
func (cc *CartClient) Replace(ctx context.Context, ownerID string, lines []LineRef) error {
	if lines == nil {
		lines = []LineRef{}
	}
	req, err := jsonRequest("PUT /carts/:userId", "cart", http.MethodPut, pathID("/carts", ownerID), replaceCartRequest{Products: lines}, true)
	if err != nil {
		return err
	}
	return cc.c.call(ctx, req, nil)
}

// Add asks the server to append or increment one line.
func (cc *CartClient) Add(ctx context.Context, ownerID string, line LineRef) error {
	req, err := jsonRequest("POST /carts/:userId/add", "cart", http.MethodPost, pathID("/carts", ownerID, "add"), line, true)
	if err != nil {
		return err
	}
	return cc.c.call(ctx, req, nil)
}
