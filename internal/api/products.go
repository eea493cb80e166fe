package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient {
	return &ProductClient{c: c}
}

type ListQuery struct {
	Limit  int
	SortBy string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	return v
}

// ProductInput is the admin create/update form. When Image is set the request is sent
// as multipart/form-data with the file under "image".
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Color       string          `json:"color,omitempty"`
	Size        string          `json:"size,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`

	Image     io.Reader `json:"-"`
	ImageName string    `json:"-"`
}

func (p *ProductClient) List(ctx context.Context, q ListQuery) ([]domain.Product, error) {
	req := request{op: "GET /products", resource: "products", method: http.MethodGet, path: "/products", query: q.values()}
	var raw json.RawMessage
	if err := p.c.call(ctx, req, &raw); err != nil {
		return nil, err
	}
	return decodeProducts(req.op, raw)
}

// decodeProducts accepts either a bare array or an object wrapping it under "products".
func decodeProducts(op string, raw json.RawMessage) ([]domain.Product, error) {
	var list []domain.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &domain.UnexpectedResponseError{Op: op, Reason: err.Error()}
	}
	if wrapped.Products == nil {
		return []domain.Product{}, nil
	}
	return wrapped.Products, nil
}

func (p *ProductClient) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	return p.save(ctx, "POST /products", http.MethodPost, "/products", in)
}

func (p *ProductClient) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	return p.save(ctx, "PATCH /products/:id", http.MethodPatch, pathID("/products", id), in)
}

func (p *ProductClient) Delete(ctx context.Context, id string) error {
	req := request{op: "DELETE /products/:id", resource: "product", method: http.MethodDelete, path: pathID("/products", id), auth: true}
	return p.c.call(ctx, req, nil)
}

func (p *ProductClient) save(ctx context.Context, op, method, path string, in ProductInput) (*domain.Product, error) {
	var (
		req request
		err error
	)
	if in.Image != nil {
		req, err = multipartRequest(op, method, path, in)
	} else {
		req, err = jsonRequest(op, "product", method, path, in, true)
	}
	if err != nil {
		return nil, err
	}
	var saved domain.Product
	if err := p.c.call(ctx, req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func multipartRequest(op, method, path string, in ProductInput) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ k, v string }{
		{"name", in.Name},
		{"description", in.Description},
		{"price", in.Price.String()},
		{"quantity", strconv.Itoa(in.Quantity)},
		{"color", in.Color},
		{"size", in.Size},
	}
	for _, f := range fields {
		if err := w.WriteField(f.k, f.v); err != nil {
			return request{}, fmt.Errorf("%s: write field %s: %w", op, f.k, err)
		}
	}
	name := in.ImageName
	if name == "" {
		name = "image"
	}
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return request{}, fmt.Errorf("%s: create image part: %w", op, err)
	}
	if _, err := io.Copy(part, in.Image); err != nil {
		return request{}, fmt.Errorf("%s: copy image: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("%s: close multipart: %w", op, err)
	}
	return request{
		op:          op,
		resource:    "product",
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
		auth:        true,
	}, nil
}
