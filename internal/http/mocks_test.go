package http

import (
	"context"
	"io"
	"sync"

	"github.com/kangoro5/leather-walk/internal/admin"
	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/cart"
	"github.com/kangoro5/leather-walk/internal/catalog"
	"github.com/kangoro5/leather-walk/internal/checkout"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/session"
	"github.com/shopspring/decimal"
)

type mockSession struct {
	state session.State
}

func (m *mockSession) State() session.State { return m.state }

func signedIn(role domain.Role) *mockSession {
	return &mockSession{state: session.State{
		IsReady:         true,
		IsAuthenticated: true,
		Identity:        &domain.Identity{ID: "u1", Username: "amina", FullName: "Amina W", Role: role},
	}}
}

type mockAccounts struct {
	identity domain.Identity
	orders   []domain.Order
	err      error
	signedUp domain.Registration
}

func (m *mockAccounts) SignIn(ctx context.Context, identifier, password string) (domain.Identity, error) {
	return m.identity, m.err
}

func (m *mockAccounts) AdminSignIn(ctx context.Context, identifier, password string) (domain.Identity, error) {
	return m.identity, m.err
}

func (m *mockAccounts) SignUp(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	m.signedUp = reg
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Identity{ID: "new", Username: reg.Username}, nil
}

func (m *mockAccounts) SignOut(ctx context.Context) error { return m.err }

func (m *mockAccounts) Profile(ctx context.Context) (domain.Identity, error) {
	return m.identity, m.err
}

func (m *mockAccounts) Orders(ctx context.Context) ([]domain.Order, error) {
	return m.orders, m.err
}

type mockCatalog struct {
	page   catalog.Page
	err    error
	query  api.ListQuery
	filter catalog.Filter
}

func (m *mockCatalog) Browse(ctx context.Context, q api.ListQuery, f catalog.Filter) (catalog.Page, error) {
	m.query, m.filter = q, f
	return m.page, m.err
}

type mockCarts struct {
	view      cart.View
	err       error
	updated   int
	removedID string
}

func (m *mockCarts) View(ownerID string) cart.View { return m.view }

func (m *mockCarts) FetchCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	return m.view.Cart, m.err
}

func (m *mockCarts) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error) {
	m.updated = quantity
	return m.view.Cart, m.err
}

func (m *mockCarts) RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error) {
	m.removedID = productID
	return m.view.Cart, m.err
}

type mockAdder struct {
	productID string
	quantity  int
	err       error
}

func (m *mockAdder) AddToCart(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	m.productID, m.quantity = productID, quantity
	return domain.Cart{}, m.err
}

type mockCheckout struct {
	snapshot checkout.Snapshot
	err      error
	form     checkout.Form
	resets   int
}

func (m *mockCheckout) Snapshot() checkout.Snapshot { return m.snapshot }

func (m *mockCheckout) ShippingCost() decimal.Decimal { return decimal.NewFromInt(500) }

func (m *mockCheckout) ResetForm() checkout.Form {
	m.resets++
	return checkout.Form{}
}

func (m *mockCheckout) Submit(ctx context.Context, f checkout.Form) (*domain.Order, error) {
	m.form = f
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Order{ID: "order-1"}, nil
}

type mockConsole struct {
	mu        sync.Mutex
	err       error
	input     api.ProductInput
	image     string
	confirmed bool
	status    domain.OrderStatus
	role      domain.Role
}

func (m *mockConsole) Overview(ctx context.Context) (admin.Overview, error) {
	if m.err != nil {
		return admin.Overview{}, m.err
	}
	return admin.Overview{TotalProducts: 3, TotalStock: 17, PendingOrders: 2, TotalRevenue: decimal.NewFromInt(46500), Currency: domain.Currency}, nil
}

func (m *mockConsole) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1"}}, m.err
}

func (m *mockConsole) CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = in
	if in.Image != nil {
		b, _ := io.ReadAll(in.Image)
		m.image = string(b)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: "p-new", Name: in.Name, Price: in.Price, Quantity: in.Quantity}, nil
}

func (m *mockConsole) UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error) {
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: id, Name: in.Name}, nil
}

func (m *mockConsole) DeleteProduct(ctx context.Context, id string, confirm admin.Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, "delete "+id) {
		return domain.ErrNotConfirmed
	}
	m.confirmed = true
	return m.err
}

func (m *mockConsole) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1"}}, m.err
}

func (m *mockConsole) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	m.status = status
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Order{ID: id, Status: status}, nil
}

func (m *mockConsole) ListUsers(ctx context.Context) ([]domain.User, error) {
	return []domain.User{{ID: "u1"}}, m.err
}

func (m *mockConsole) UpdateUserRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	m.role = role
	if m.err != nil {
		return nil, m.err
	}
	return &domain.User{ID: id, Role: role}, nil
}

func (m *mockConsole) DeleteUser(ctx context.Context, id string, confirm admin.Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, "delete "+id) {
		return domain.ErrNotConfirmed
	}
	m.confirmed = true
	return m.err
}
