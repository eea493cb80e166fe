package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductStore interface {
	List(ctx context.Context, q api.ListQuery) ([]domain.Product, error)
	Create(ctx context.Context, in api.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type OrderStore interface {
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Always confirms; for callers that confirmed out of band.
var Always = ConfirmFunc(func(context.Context, string) bool { return true })

type Console struct {
	products ProductStore
	orders   OrderStore
	users    UserStore
}

func NewConsole(products ProductStore, orders OrderStore, users UserStore) *Console {
	return &Console{products: products, orders: orders, users: users}
}

func (c *Console) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := c.products.List(ctx, api.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Console) CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p, err := c.products.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (c *Console) UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "Product id is required."}
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p, err := c.products.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

func (c *Console) DeleteProduct(ctx context.Context, id string, confirm Confirmer) error {
	if !confirmed(ctx, confirm, "Delete product "+id+"?") {
		return domain.ErrNotConfirmed
	}
	if err := c.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func (c *Console) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := c.orders.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (c *Console) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown order status %q.", status)}
	}
	o, err := c.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	return o, nil
}

func (c *Console) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := c.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (c *Console) UpdateUserRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: fmt.Sprintf("Unknown role %q.", role)}
	}
	u, err := c.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

func (c *Console) DeleteUser(ctx context.Context, id string, confirm Confirmer) error {
	if !confirmed(ctx, confirm, "Delete user "+id+"?") {
		return domain.ErrNotConfirmed
	}
	if err := c.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func confirmed(ctx context.Context, c Confirmer, prompt string) bool {
	return c != nil && c.Confirm(ctx, prompt)
}

func validateProduct(in api.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &domain.ValidationError{Field: "name", Message: "Product name is required."}
	case in.Price.LessThanOrEqual(decimal.Zero):
		return &domain.ValidationError{Field: "price", Message: "Price must be greater than 0."}
	case in.Quantity < 0:
		return &domain.ValidationError{Field: "quantity", Message: "Quantity cannot be negative."}
	}
	return nil
}
