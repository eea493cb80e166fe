package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLoginRequired     = errors.New("login required")
	ErrNotConfirmed      = errors.New("action not confirmed")
	ErrSubmitInProgress  = errors.New("order submission already in progress")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)

// AuthenticationError means the token is missing, invalid or expired.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return "authentication failed: " + e.Message
}

// PermissionError is a valid session denied an action by the server. It does not end
// the session.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Message
}

type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
	}
	return e.Resource + " not found"
}

// ValidationError is a rejected field, either by client checks or by the server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NetworkError is a request that produced no usable response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UnexpectedResponseError is a response body that could not be decoded into the expected shape.
type UnexpectedResponseError struct {
	Op     string
	Reason string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %s", e.Op, e.Reason)
}

// ServerError is any other non-success status.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// UserMessage is the text shown to the shopper for err, falling back to generic when
// nothing more specific is known.
func UserMessage(err error, generic string) string {
	var (
		validation *ValidationError
		server     *ServerError
		auth       *AuthenticationError
		permission *PermissionError
		notFound   *NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &server) && server.Message != "":
		return server.Message
	case errors.As(err, &auth):
		return "Session expired. Please log in again."
	case errors.As(err, &permission):
		if permission.Message != "" {
			return permission.Message
		}
		return "You do not have permission to do that."
	case errors.As(err, &notFound):
		return notFound.Error()
	case IsNetwork(err):
		return "No response from server. Please check your internet connection or try again later."
	}
	return generic
}
