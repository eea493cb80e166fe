package admin

import (
	"context"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
)

type mockProducts struct {
	list    []domain.Product
	created []api.ProductInput
	updated map[string]api.ProductInput
	deleted []string
	err     error
}

func (m *mockProducts) List(context.Context, api.ListQuery) ([]domain.Product, error) {
	if m.list != nil {
		return m.list, m.err
	}
	return []domain.Product{{ID: "P1", Name: "Classic Oxford"}}, m.err
}

func (m *mockProducts) Create(_ context.Context, in api.ProductInput) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, in)
	return &domain.Product{ID: "P-new", Name: in.Name, Price: in.Price, Quantity: in.Quantity}, nil
}

func (m *mockProducts) Update(_ context.Context, id string, in api.ProductInput) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.updated == nil {
		m.updated = map[string]api.ProductInput{}
	}
	m.updated[id] = in
	return &domain.Product{ID: id, Name: in.Name}, nil
}

func (m *mockProducts) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type mockOrders struct {
	list     []domain.Order
	listErr  error
	listUser string
	statuses map[string]domain.OrderStatus
}

func (m *mockOrders) List(_ context.Context, userID string) ([]domain.Order, error) {
	m.listUser = userID
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.list != nil {
		return m.list, nil
	}
	return []domain.Order{{ID: "o1"}, {ID: "o2"}}, nil
}

func (m *mockOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if m.statuses == nil {
		m.statuses = map[string]domain.OrderStatus{}
	}
	m.statuses[id] = status
	return &domain.Order{ID: id, Status: status}, nil
}

type mockUsers struct {
	roles   map[string]domain.Role
	deleted []string
}

func (m *mockUsers) List(context.Context) ([]domain.User, error) {
	return []domain.User{{ID: "u1", Role: domain.RoleCustomer}}, nil
}

func (m *mockUsers) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	if m.roles == nil {
		m.roles = map[string]domain.Role{}
	}
	m.roles[id] = role
	return &domain.User{ID: id, Role: role}, nil
}

func (m *mockUsers) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}
