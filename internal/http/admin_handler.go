package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kangoro5/leather-walk/internal/admin"
	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 10 << 20

type AdminConsole interface {
	Overview(ctx context.Context) (admin.Overview, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string, confirm admin.Confirmer) error
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	DeleteUser(ctx context.Context, id string, confirm admin.Confirmer) error
}

type AdminHandler struct {
	console AdminConsole
	timeout time.Duration
}

func NewAdminHandler(c AdminConsole, timeout time.Duration) *AdminHandler {
	return &AdminHandler{console: c, timeout: timeout}
}

type OrderStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

type UserRoleRequestDTO struct {
	Role domain.Role `json:"role"`
}

// confirmation turns ?confirm=true into a Confirmer; anything else leaves it nil.
func confirmation(r *http.Request) admin.Confirmer {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		return admin.Always
	}
	return nil
}

// productInput reads a product form. Multipart bodies may carry the image file under "image".
func productInput(w http.ResponseWriter, r *http.Request) (api.ProductInput, bool) {
	var in api.ProductInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return in, decodeJSON(w, r, &in)
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return in, false
	}
	in.Name = r.FormValue("name")
	in.Description = r.FormValue("description")
	in.Color = r.FormValue("color")
	in.Size = r.FormValue("size")
	in.ImageURL = r.FormValue("imageUrl")

	if s := r.FormValue("price"); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_price", "price must be a number")
			return in, false
		}
		in.Price = price
	}
	if s := r.FormValue("quantity"); s != "" {
		qty, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
			return in, false
		}
		in.Quantity = qty
	}

	if file, header, err := r.FormFile("image"); err == nil {
		// the multipart form keeps the file open until the request ends
		in.Image = file
		in.ImageName = header.Filename
	}
	return in, true
}

// GET /api/v1/admin/overview
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ov, err := h.console.Overview(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ov)
}

// GET /api/v1/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.console.ListProducts(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in, ok := productInput(w, r)
	if !ok {
		return
	}
	product, err := h.console.CreateProduct(ctx, in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// PATCH /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in, ok := productInput(w, r)
	if !ok {
		return
	}
	product, err := h.console.UpdateProduct(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DELETE /api/v1/admin/products/{id}?confirm=true
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.console.DeleteProduct(ctx, chi.URLParam(r, "id"), confirmation(r)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.console.ListOrders(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// PATCH /api/v1/admin/orders/{id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.console.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.console.ListUsers(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// PATCH /api/v1/admin/users/{id}/role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UserRoleRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.console.UpdateUserRole(ctx, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DELETE /api/v1/admin/users/{id}?confirm=true
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.console.DeleteUser(ctx, chi.URLParam(r, "id"), confirmation(r)); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
