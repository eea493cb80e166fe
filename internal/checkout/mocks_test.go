package checkout

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/events"
)

// mockCartAPI serves one server cart with populated product references.
type mockCartAPI struct {
	mu     sync.Mutex
	lines  []api.LineRef
	prices map[string]int64
	getErr error
}

func (m *mockCartAPI) Get(_ context.Context, _ string) (*api.CartPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	payload := &api.CartPayload{}
	for _, l := range m.lines {
		ref := map[string]any{"_id": l.ProductID, "name": "Shoe " + l.ProductID, "quantity": 10}
		if price, ok := m.prices[l.ProductID]; ok {
			ref["price"] = price
		}
		rawRef, _ := json.Marshal(ref)
		rawQty, _ := json.Marshal(l.Quantity)
		payload.Products = append(payload.Products, api.RawCartLine{ProductID: rawRef, Quantity: rawQty})
	}
	return payload, nil
}

func (m *mockCartAPI) Replace(_ context.Context, _ string, lines []api.LineRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = lines
	return nil
}

func (m *mockCartAPI) Add(_ context.Context, _ string, line api.LineRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *mockCartAPI) setPrice(id string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[id] = price
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

type mockOrders struct {
	mu     sync.Mutex
	drafts []domain.OrderDraft
	err    error
	// block, when set, holds Create until it is closed
	block   chan struct{}
	entered chan struct{}
}

func (m *mockOrders) Create(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append(m.drafts, draft)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Order{ID: "order-1", UserID: draft.OwnerID, Status: domain.OrderStatusPending, TotalAmount: draft.Total}, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.OrderPlaced
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, ev events.OrderPlaced) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}
