package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kangoro5/leather-walk/internal/cart"
	"github.com/kangoro5/leather-walk/internal/domain"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondLogin(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:    message,
		Code:     code,
		Redirect: "/login",
	})
}

// handleError converts a service error into a status and error code.
func handleError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		server     *domain.ServerError
		unexpected *domain.UnexpectedResponseError
	)

	msg := domain.UserMessage(err, "internal server error")
	switch {
	case errors.Is(err, domain.ErrLoginRequired):
		respondLogin(w, http.StatusUnauthorized, "login_required", "Please log in to continue.")
	case domain.IsAuthentication(err):
		respondLogin(w, http.StatusUnauthorized, "unauthenticated", msg)
	case domain.IsPermission(err):
		respondError(w, http.StatusForbidden, "permission_denied", msg)
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Your cart is empty.")
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "invalid_argument", Details: validation.Field})
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, domain.ErrSubmitInProgress):
		respondError(w, http.StatusConflict, "submit_in_progress", "Your order is already being placed.")
	case errors.Is(err, domain.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, domain.ErrNotConfirmed):
		respondError(w, http.StatusPreconditionRequired, "not_confirmed", "This action must be confirmed.")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", msg)
	case domain.IsNetwork(err), errors.Is(err, cart.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", msg)
	case errors.As(err, &server):
		respondError(w, http.StatusBadGateway, "upstream_error", msg)
	case errors.As(err, &unexpected):
		respondError(w, http.StatusBadGateway, "bad_upstream_response", "Unexpected response from server.")
	default:
		log.Printf("unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
