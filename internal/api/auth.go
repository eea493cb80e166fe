package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/kangoro5/leather-walk/internal/domain"
)

type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	User  *domain.Identity `json:"user"`
	Token string           `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login signs in with an email when identifier contains "@", otherwise with a username.
func (a *AuthClient) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	body := loginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		body.Email = identifier
	} else {
		body.Username = identifier
	}
	return a.login(ctx, "POST /login", "/login", body)
}

func (a *AuthClient) AdminLogin(ctx context.Context, identifier, password string) (*LoginResult, error) {
	return a.login(ctx, "POST /admin/login", "/admin/login", adminLoginRequest{Identifier: identifier, Password: password})
}

func (a *AuthClient) login(ctx context.Context, op, path string, body any) (*LoginResult, error) {
	req, err := jsonRequest(op, "account", http.MethodPost, path, body, false)
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := a.c.call(ctx, req, &res); err != nil {
		return nil, err
	}
	if res.User == nil || res.User.ID == "" {
		return nil, &domain.UnexpectedResponseError{Op: op, Reason: "missing user"}
	}
	if res.Token == "" {
		return nil, &domain.UnexpectedResponseError{Op: op, Reason: "missing token"}
	}
	return &res, nil
}

func (a *AuthClient) SignUp(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	req, err := jsonRequest("POST /users", "account", http.MethodPost, "/users", reg, false)
	if err != nil {
		return nil, err
	}
	var created domain.Identity
	if err := a.c.call(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Me returns the profile of the token holder.
func (a *AuthClient) Me(ctx context.Context) (*domain.Identity, error) {
	req := request{op: "GET /users/me", resource: "user", method: http.MethodGet, path: "/users/me", auth: true}
	var me domain.Identity
	if err := a.c.call(ctx, req, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
