package session

import (
	"context"
	"errors"
)

// Keys under which the session is persisted.
const (
	UserKey  = "user"
	TokenKey = "token"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is the durable storage the session mirrors itself to.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
