package cache

import (
	"context"
	"errors"

	"github.com/kangoro5/leather-walk/internal/domain"
)

// CartCache keeps the last cart view that matched the server, so a restarted storefront
// can show it while the API is unreachable.
type CartCache interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Set(ctx context.Context, ownerID string, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
