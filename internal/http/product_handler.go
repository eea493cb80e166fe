package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/catalog"
	"github.com/shopspring/decimal"
)

type Catalog interface {
	Browse(ctx context.Context, q api.ListQuery, f catalog.Filter) (catalog.Page, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(c Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{catalog: c, timeout: timeout}
}

// GET /api/v1/products?limit=&sortBy=&name=&maxPrice=&size=&color=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	var query api.ListQuery
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		query.Limit = limit
	}
	query.SortBy = q.Get("sortBy")

	filter := catalog.Filter{Name: q.Get("name"), Size: q.Get("size"), Color: q.Get("color")}
	if s := q.Get("maxPrice"); s != "" {
		maxPrice, err := decimal.NewFromString(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_max_price", "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &maxPrice
	}

	page, err := h.catalog.Browse(ctx, query, filter)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
