package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/pkg/logger"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

const minPasswordLength = 6

type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*api.LoginResult, error)
	AdminLogin(ctx context.Context, identifier, password string) (*api.LoginResult, error)
	SignUp(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
	Me(ctx context.Context) (*domain.Identity, error)
}

type OrderLister interface {
	List(ctx context.Context, userID string) ([]domain.Order, error)
}

// Session is the part of *session.Session the account flows drive.
type Session interface {
	Identity() (domain.Identity, bool)
	Login(ctx context.Context, identity domain.Identity, token string) error
	UpdateIdentity(ctx context.Context, identity domain.Identity) error
	Logout(ctx context.Context) error
	Expire(ctx context.Context)
}

type Service struct {
	auth    Authenticator
	orders  OrderLister
	session Session
}

func NewService(auth Authenticator, orders OrderLister, session Session) *Service {
	return &Service{auth: auth, orders: orders, session: session}
}

// SignIn logs in with an email or username and starts the session.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (domain.Identity, error) {
	return s.signIn(ctx, identifier, password, s.auth.Login)
}

// AdminSignIn logs in through the admin endpoint. Whether the account may administer the
// store is the server's decision; a refusal comes back as a PermissionError.
func (s *Service) AdminSignIn(ctx context.Context, identifier, password string) (domain.Identity, error) {
	return s.signIn(ctx, identifier, password, s.auth.AdminLogin)
}

type loginFunc func(ctx context.Context, identifier, password string) (*api.LoginResult, error)

func (s *Service) signIn(ctx context.Context, identifier, password string, login loginFunc) (domain.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.Identity{}, &domain.ValidationError{Field: "identifier", Message: "Please enter your email or username."}
	}
	if password == "" {
		return domain.Identity{}, &domain.ValidationError{Field: "password", Message: "Please enter your password."}
	}

	res, err := login(ctx, identifier, password)
	if err != nil {
		logger.Printf(ctx, "sign in error: %v", err)
		return domain.Identity{}, credentialsError(err)
	}
	if err := s.session.Login(ctx, *res.User, res.Token); err != nil {
		return domain.Identity{}, fmt.Errorf("start session: %w", err)
	}
	return *res.User, nil
}

// credentialsError turns a rejected login into a message about the credentials rather
// than an expired session.
func credentialsError(err error) error {
	var (
		auth     *domain.AuthenticationError
		notFound *domain.NotFoundError
		msg      string
	)
	switch {
	case errors.As(err, &auth):
		msg = auth.Message
	case errors.As(err, &notFound):
		msg = notFound.Message
	default:
		return err
	}
	if msg == "" {
		msg = "Login failed. Please check your credentials."
	}
	return &domain.ValidationError{Field: "credentials", Message: msg}
}

// SignUp validates reg locally before posting it.
func (s *Service) SignUp(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.FullName = strings.TrimSpace(reg.FullName)
	created, err := s.auth.SignUp(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return created, nil
}

func ValidateRegistration(reg domain.Registration) error {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return &domain.ValidationError{Field: "username", Message: "Username is required."}
	case strings.TrimSpace(reg.FullName) == "":
		return &domain.ValidationError{Field: "fullname", Message: "Full name is required."}
	case !validEmail(reg.Email):
		return &domain.ValidationError{Field: "email", Message: "Please enter a valid email address."}
	case !phonePattern.MatchString(strings.TrimSpace(reg.Phone)):
		return &domain.ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number."}
	case !domain.IsCounty(reg.County):
		return &domain.ValidationError{Field: "county", Message: "Please select your county."}
	case reg.Password != reg.ConfirmPassword:
		return &domain.ValidationError{Field: "password", Message: "Passwords do not match."}
	case len(reg.Password) < minPasswordLength:
		return &domain.ValidationError{Field: "password", Message: "Password must be at least 6 characters long."}
	}
	return nil
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Profile reloads the signed-in user's profile. A rejected token expires the session
// and a missing user logs out.
func (s *Service) Profile(ctx context.Context) (domain.Identity, error) {
	if _, ok := s.session.Identity(); !ok {
		return domain.Identity{}, domain.ErrLoginRequired
	}

	me, err := s.auth.Me(ctx)
	switch {
	case err == nil:
	case domain.IsAuthentication(err):
		// the client's auth hook has normally expired the session already
		s.session.Expire(ctx)
		return domain.Identity{}, err
	case domain.IsNotFound(err):
		if errLogout := s.session.Logout(ctx); errLogout != nil {
			logger.Printf(ctx, "logout error: %v", errLogout)
		}
		return domain.Identity{}, &domain.NotFoundError{Resource: "user", Message: "User not found. Please log in again."}
	default:
		return domain.Identity{}, fmt.Errorf("load profile: %w", err)
	}

	if me.ID == "" {
		return domain.Identity{}, &domain.UnexpectedResponseError{Op: "GET /users/me", Reason: "missing user id"}
	}
	if err := s.session.UpdateIdentity(ctx, *me); err != nil {
		logger.Printf(ctx, "profile persist error: %v", err)
	}
	return *me, nil
}

// Orders lists the signed-in user's orders.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	identity, ok := s.session.Identity()
	if !ok {
		return nil, domain.ErrLoginRequired
	}
	orders, err := s.orders.List(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.session.Logout(ctx)
}
