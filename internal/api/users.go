package api

import (
	"context"
	"net/http"

	"github.com/kangoro5/leather-walk/internal/domain"
)

type UserClient struct{ c *Client }

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) List(ctx context.Context) ([]domain.User, error) {
	req := request{op: "GET /users", resource: "users", method: http.MethodGet, path: "/users", auth: true}
	var users []domain.User
	if err := u.c.call(ctx, req, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

func (u *UserClient) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	req, err := jsonRequest("PATCH /users/:id", "user", http.MethodPatch, pathID("/users", id), roleRequest{Role: role}, true)
	if err != nil {
		return nil, err
	}
	var updated domain.User
	if err := u.c.call(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (u *UserClient) Delete(ctx context.Context, id string) error {
	req := request{op: "DELETE /users/:id", resource: "user", method: http.MethodDelete, path: pathID("/users", id), auth: true}
	return u.c.call(ctx, req, nil)
}
