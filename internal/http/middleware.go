package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/session"
)

type SessionState interface {
	State() session.State
}

type identityKey struct{}

// SessionMiddleware answers 503 until the stored session has been loaded, so an unready
// session is never mistaken for a logged-out one. The identity, if any, is put on the
// request context.
func SessionMiddleware(s SessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := s.State()
			if !st.IsReady {
				w.Header().Set("Retry-After", "1")
				respondError(w, http.StatusServiceUnavailable, "session_not_ready", "session is loading")
				return
			}
			if st.IsAuthenticated && st.Identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey{}, *st.Identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin rejects anonymous requests with a redirect to the login view.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFrom(r.Context()); !ok {
			respondLogin(w, http.StatusUnauthorized, "login_required", "Please log in to continue.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok
}

// RequestIDHeader echoes the chi request id back to the caller. It must run after
// middleware.RequestID.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
