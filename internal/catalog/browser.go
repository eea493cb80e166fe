package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/pkg/logger"
)

type ProductLister interface {
	List(ctx context.Context, q api.ListQuery) ([]domain.Product, error)
}

// Identities reports the signed-in identity.
type Identities interface {
	Identity() (domain.Identity, bool)
}

type CartAdder interface {
	AddItem(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error)
}

// Page is one Browse result. Offline is set when it was served from the mirror.
type Page struct {
	Products []domain.Product `json:"products"`
	Facets   Facets           `json:"facets"`
	Offline  bool             `json:"offline"`
}

type Browser struct {
	products ProductLister
	session  Identities
	cart     CartAdder
	mirror   *Mirror

	mu    sync.RWMutex
	known map[string]domain.Product
}

type Option func(*Browser)

func WithMirror(m *Mirror) Option {
	return func(b *Browser) { b.mirror = m }
}

func NewBrowser(products ProductLister, session Identities, cart CartAdder, opts ...Option) *Browser {
	b := &Browser{products: products, session: session, cart: cart, known: map[string]domain.Product{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Browse lists products and applies f on the client. Facets are computed over the
// unfiltered listing. On a network failure the mirrored listing is served instead.
// Only an unbounded listing replaces the mirror; a limited one is merged into it.
func (b *Browser) Browse(ctx context.Context, q api.ListQuery, f Filter) (Page, error) {
	products, err := b.products.List(ctx, q)
	offline := false
	switch {
	case err == nil:
		b.remember(products)
		if b.mirror != nil {
			write := b.mirror.Replace
			if q.Limit > 0 {
				write = b.mirror.Upsert
			}
			if errMirror := write(ctx, products); errMirror != nil {
				logger.Printf(ctx, "catalog mirror update error: %v", errMirror)
			}
		}
	case domain.IsNetwork(err) && b.mirror != nil:
		mirrored, errMirror := b.mirror.List(ctx, q.Limit)
		if errMirror != nil || len(mirrored) == 0 {
			return Page{}, err
		}
		logger.Printf(ctx, "catalog served from mirror: %v", err)
		products, offline = mirrored, true
	default:
		return Page{}, err
	}

	return Page{Products: f.Apply(products), Facets: FacetsOf(products), Offline: offline}, nil
}

// AddToCart adds to the signed-in customer's cart.
func (b *Browser) AddToCart(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	identity, ok := b.session.Identity()
	if !ok {
		return domain.Cart{}, domain.ErrLoginRequired
	}
	return b.cart.AddItem(ctx, identity.ID, productID, quantity)
}

// Lookup implements cart.ProductResolver from the last listing, then the mirror.
func (b *Browser) Lookup(ctx context.Context, productID string) (domain.Product, bool) {
	b.mu.RLock()
	p, ok := b.known[productID]
	b.mu.RUnlock()
	if ok {
		return p, true
	}
	if b.mirror == nil {
		return domain.Product{}, false
	}
	p, err := b.mirror.Get(ctx, productID)
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			logger.Printf(ctx, "catalog mirror lookup error: %v", err)
		}
		return domain.Product{}, false
	}
	return p, true
}

func (b *Browser) remember(products []domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range products {
		if p.ID != "" {
			b.known[p.ID] = p
		}
	}
}
