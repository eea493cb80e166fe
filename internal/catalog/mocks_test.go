package catalog

import (
	"context"
	"sync"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
)

type mockLister struct {
	products []domain.Product
	err      error
	queries  []api.ListQuery
}

func (m *mockLister) List(_ context.Context, q api.ListQuery) ([]domain.Product, error) {
	m.queries = append(m.queries, q)
	return m.products, m.err
}

type mockIdentities struct {
	identity *domain.Identity
}

func (m mockIdentities) Identity() (domain.Identity, bool) {
	if m.identity == nil {
		return domain.Identity{}, false
	}
	return *m.identity, true
}

type addCall struct {
	owner, product string
	qty            int
}

type mockCart struct {
	mu    sync.Mutex
	calls []addCall
	err   error
}

func (m *mockCart) AddItem(_ context.Context, ownerID, productID string, quantity int) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, addCall{ownerID, productID, quantity})
	return domain.Cart{OwnerID: ownerID, Lines: []domain.CartLine{{ProductID: productID, Quantity: quantity}}}, m.err
}
