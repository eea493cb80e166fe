package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/session"
)

type AccountService interface {
	SignIn(ctx context.Context, identifier, password string) (domain.Identity, error)
	AdminSignIn(ctx context.Context, identifier, password string) (domain.Identity, error)
	SignUp(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (domain.Identity, error)
	Orders(ctx context.Context) ([]domain.Order, error)
}

type AccountHandler struct {
	accounts AccountService
	session  SessionState
	timeout  time.Duration
}

func NewAccountHandler(accounts AccountService, s SessionState, timeout time.Duration) *AccountHandler {
	return &AccountHandler{accounts: accounts, session: s, timeout: timeout}
}

type LoginRequestDTO struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type SignUpRequestDTO struct {
	Username        string `json:"username"`
	FullName        string `json:"fullname"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	County          string `json:"county"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type SessionResponseDTO struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsReady         bool             `json:"isReady"`
	User            *domain.Identity `json:"user,omitempty"`
	DisplayName     string           `json:"displayName,omitempty"`
	Role            domain.Role      `json:"role,omitempty"`
}

func sessionResponse(st session.State) SessionResponseDTO {
	resp := SessionResponseDTO{IsAuthenticated: st.IsAuthenticated, IsReady: st.IsReady, User: st.Identity}
	if st.Identity != nil {
		resp.DisplayName = st.Identity.DisplayName()
		resp.Role = st.Identity.Role
	}
	return resp
}

// GET /api/v1/session
func (h *AccountHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionResponse(h.session.State()))
}

// POST /api/v1/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.accounts.SignIn)
}

// POST /api/v1/admin/login
func (h *AccountHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.accounts.AdminSignIn)
}

func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request, signIn func(context.Context, string, string) (domain.Identity, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := signIn(ctx, req.Identifier, req.Password); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(h.session.State()))
}

// POST /api/v1/signup
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignUpRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.accounts.SignUp(ctx, domain.Registration{
		Username:        req.Username,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
		County:          req.County,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// POST /api/v1/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context()); err != nil {
		// the in-memory session is already gone
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/account
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	me, err := h.accounts.Profile(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, me)
}

// GET /api/v1/account/orders
func (h *AccountHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.accounts.Orders(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/counties
func Counties(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.Counties)
}
