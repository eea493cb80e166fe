package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/cart/cache"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// CartAPI is the remote cart endpoint set.
type CartAPI interface {
	Get(ctx context.Context, ownerID string) (*api.CartPayload, error)
	Replace(ctx context.Context, ownerID string, lines []api.LineRef) error
	Add(ctx context.Context, ownerID string, line api.LineRef) error
}

// ProductResolver looks up catalog data for lines the server returns as bare ids.
type ProductResolver interface {
	Lookup(ctx context.Context, productID string) (domain.Product, bool)
}

// ResolverFunc adapts a function to ProductResolver.
type ResolverFunc func(ctx context.Context, productID string) (domain.Product, bool)

func (f ResolverFunc) Lookup(ctx context.Context, productID string) (domain.Product, bool) {
	return f(ctx, productID)
}

// View is a snapshot of one owner's cart as the storefront currently shows it.
type View struct {
	Cart   domain.Cart `json:"cart"`
	State  SyncState   `json:"state"`
	Loaded bool        `json:"loaded"`
}

type ownerCart struct {
	queue    *queue
	view     domain.Cart
	snapshot *domain.Cart // last-known-good while Pending
	state    SyncState
	loaded   bool
}

// Synchronizer is the single authority for an owner's cart view. Every fetch and
// mutation for one owner runs through that owner's in-order queue.
type Synchronizer struct {
	api           CartAPI
	products      ProductResolver
	cache         cache.CartCache
	resyncTimeout time.Duration
	sfg           singleflight.Group

	mu     sync.Mutex
	carts  map[string]*ownerCart
	stop   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

type Option func(*Synchronizer)

func WithProductResolver(r ProductResolver) Option {
	return func(s *Synchronizer) { s.products = r }
}

func WithCache(c cache.CartCache) Option {
	return func(s *Synchronizer) { s.cache = c }
}

// WithResyncTimeout bounds the fetches no single caller owns: the re-fetch that follows
// a rejected mutation and the shared FetchCart flight.
func WithResyncTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.resyncTimeout = d }
}

func NewSynchronizer(cartAPI CartAPI, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		api:           cartAPI,
		resyncTimeout: 10 * time.Second,
		carts:         make(map[string]*ownerCart),
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops every owner queue. Calls after Close fail with ErrClosed.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Synchronizer) owner(ownerID string) (*ownerCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	oc, ok := s.carts[ownerID]
	if !ok {
		oc = &ownerCart{queue: newQueue(s.stop, &s.wg), view: domain.EmptyCart(ownerID)}
		s.carts[ownerID] = oc
	}
	return oc, nil
}

func (s *Synchronizer) enqueue(ctx context.Context, ownerID string, fn func(ctx context.Context, oc *ownerCart) error) error {
	if ownerID == "" {
		return domain.ErrLoginRequired
	}
	oc, err := s.owner(ownerID)
	if err != nil {
		return err
	}
	return oc.queue.submit(ctx, func(ctx context.Context) error {
		return fn(ctx, oc)
	})
}

// View returns the current view without touching the network.
func (s *Synchronizer) View(ownerID string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	oc, ok := s.carts[ownerID]
	if !ok {
		return View{Cart: domain.EmptyCart(ownerID), State: StateClean}
	}
	return View{Cart: oc.view.Clone(), State: oc.state, Loaded: oc.loaded}
}

// Total of the current view; unknown prices count as zero.
func (s *Synchronizer) Total(ownerID string) decimal.Decimal {
	return s.View(ownerID).Cart.Total()
}

// FetchCart loads the server cart. A missing server cart is an empty cart. On any other
// failure the previous view is returned unchanged together with the error.
//
// Concurrent callers share one flight. The flight is detached from every caller's
// cancellation and bounded by the resync timeout; a caller whose ctx ends stops waiting
// without ending the flight for the others.
func (s *Synchronizer) FetchCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	ch := s.sfg.DoChan(ownerID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.resyncTimeout)
		defer cancel()

		var cart domain.Cart
		errFetch := s.enqueue(fetchCtx, ownerID, func(ctx context.Context, oc *ownerCart) error {
			var err error
			cart, err = s.fetch(ctx, ownerID, oc)
			return err
		})
		return cart, errFetch
	})

	select {
	case res := <-ch:
		// the result is shared by every caller of this flight
		cart, _ := res.Val.(domain.Cart)
		if res.Err != nil {
			if cart.OwnerID == "" {
				return s.View(ownerID).Cart, res.Err
			}
			return cart.Clone(), res.Err
		}
		return cart.Clone(), nil
	case <-ctx.Done():
		return s.View(ownerID).Cart, ctx.Err()
	}
}

// fetch runs on the owner's queue.
func (s *Synchronizer) fetch(ctx context.Context, ownerID string, oc *ownerCart) (domain.Cart, error) {
	payload, err := s.api.Get(ctx, ownerID)
	if err != nil && !domain.IsNotFound(err) {
		logger.Printf(ctx, "cart fetch error: %v", err)
		s.restoreFromCache(ctx, ownerID, oc)
		return s.viewOf(oc), fmt.Errorf("fetch cart: %w", err)
	}

	fresh, dropped := Normalize(ownerID, payload)
	if dropped > 0 {
		logger.Printf(ctx, "cart %s: dropped %d lines with dangling product references", ownerID, dropped)
	}
	s.enrichLines(ctx, &fresh)

	s.mu.Lock()
	oc.view, oc.snapshot, oc.state, oc.loaded = fresh, nil, StateClean, true
	s.mu.Unlock()
	s.storeView(ownerID, fresh)

	return fresh.Clone(), nil
}

func (s *Synchronizer) ensureLoaded(ctx context.Context, ownerID string, oc *ownerCart) error {
	s.mu.Lock()
	loaded := oc.loaded && oc.state == StateClean
	s.mu.Unlock()
	if loaded {
		return nil
	}
	_, err := s.fetch(ctx, ownerID, oc)
	return err
}

// AddItem asks the server to add quantity units of productID. The request is rejected
// locally, without a network call or view change, when quantity is below 1 or the
// resulting line would exceed known stock.
func (s *Synchronizer) AddItem(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return s.View(ownerID).Cart, &domain.ValidationError{Field: "quantity", Message: "Quantity must be at least 1"}
	}
	if productID == "" {
		return s.View(ownerID).Cart, &domain.ValidationError{Field: "productId", Message: "Product is required"}
	}

	err := s.enqueue(ctx, ownerID, func(ctx context.Context, oc *ownerCart) error {
		if err := s.ensureLoaded(ctx, ownerID, oc); err != nil {
			return err
		}

		existing := 0
		current := s.viewOf(oc)
		line, inCart := current.Line(productID)
		if inCart {
			existing = line.Quantity
		}
		if stock, known := s.stockFor(ctx, line, inCart, productID); known {
			if existing+quantity > stock {
				return stockError(stock - existing)
			}
		}

		if err := s.api.Add(ctx, ownerID, api.LineRef{ProductID: productID, Quantity: quantity}); err != nil {
			logger.Printf(ctx, "cart add item error: %v", err)
			return fmt.Errorf("add item: %w", err)
		}

		if _, err := s.fetch(ctx, ownerID, oc); err != nil {
			// the add went through; the view catches up on the next fetch
			s.mu.Lock()
			oc.state = StateReconciling
			s.mu.Unlock()
		}
		return nil
	})
	return s.View(ownerID).Cart, err
}

// UpdateQuantity sets productID's quantity, clamped to known stock. The change is shown
// immediately and the full line list is sent to the server. If the server rejects it the
// optimistic change is discarded and the cart is fetched again.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return s.View(ownerID).Cart, &domain.ValidationError{Field: "quantity", Message: "Quantity must be at least 1"}
	}

	err := s.enqueue(ctx, ownerID, func(ctx context.Context, oc *ownerCart) error {
		if err := s.ensureLoaded(ctx, ownerID, oc); err != nil {
			return err
		}
		current := s.viewOf(oc)
		line, ok := current.Line(productID)
		if !ok {
			return &domain.NotFoundError{Resource: "cart line", Message: productID}
		}
		if stock, known := s.stockFor(ctx, line, true, productID); known {
			if stock < 1 {
				return stockError(0)
			}
			if quantity > stock {
				quantity = stock
			}
		}

		next := current.Clone()
		for i := range next.Lines {
			if next.Lines[i].ProductID == productID {
				next.Lines[i].Quantity = quantity
			}
		}
		return s.replace(ctx, ownerID, oc, current, next)
	})
	return s.View(ownerID).Cart, err
}

// RemoveItem drops productID from the cart with the same optimistic policy as UpdateQuantity.
func (s *Synchronizer) RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error) {
	err := s.enqueue(ctx, ownerID, func(ctx context.Context, oc *ownerCart) error {
		if err := s.ensureLoaded(ctx, ownerID, oc); err != nil {
			return err
		}
		current := s.viewOf(oc)
		if _, ok := current.Line(productID); !ok {
			return &domain.NotFoundError{Resource: "cart line", Message: productID}
		}

		next := domain.Cart{OwnerID: ownerID, Lines: make([]domain.CartLine, 0, len(current.Lines))}
		for _, l := range current.Clone().Lines {
			if l.ProductID != productID {
				next.Lines = append(next.Lines, l)
			}
		}
		return s.replace(ctx, ownerID, oc, current, next)
	})
	return s.View(ownerID).Cart, err
}

// replace applies next optimistically and sends it. Runs on the owner's queue.
func (s *Synchronizer) replace(ctx context.Context, ownerID string, oc *ownerCart, current, next domain.Cart) error {
	s.mu.Lock()
	oc.snapshot = &current
	oc.view = next
	oc.state = StatePending
	s.mu.Unlock()

	errReplace := s.api.Replace(ctx, ownerID, lineRefs(next))
	if errReplace == nil {
		s.mu.Lock()
		oc.snapshot, oc.state = nil, StateClean
		s.mu.Unlock()
		s.storeView(ownerID, next)
		return nil
	}

	logger.Printf(ctx, "cart replace error, resyncing: %v", errReplace)
	s.reconcile(ctx, ownerID, oc)
	return fmt.Errorf("update cart: %w", errReplace)
}

// reconcile discards the optimistic view and re-fetches. If the re-fetch fails too the
// last-known-good snapshot stays visible and the cart remains Reconciling.
func (s *Synchronizer) reconcile(ctx context.Context, ownerID string, oc *ownerCart) {
	s.mu.Lock()
	if oc.snapshot != nil {
		oc.view = *oc.snapshot
		oc.snapshot = nil
	}
	oc.state = StateReconciling
	s.mu.Unlock()

	resyncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.resyncTimeout)
	defer cancel()
	if _, err := s.fetch(resyncCtx, ownerID, oc); err != nil {
		logger.Printf(ctx, "cart resync error: %v", err)
	}
}

// Clear empties the local view after an order was placed. The server clears its copy
// itself; that is not re-verified here.
func (s *Synchronizer) Clear(ctx context.Context, ownerID string) error {
	return s.enqueue(ctx, ownerID, func(ctx context.Context, oc *ownerCart) error {
		s.mu.Lock()
		oc.view, oc.snapshot, oc.state, oc.loaded = domain.EmptyCart(ownerID), nil, StateClean, true
		s.mu.Unlock()
		s.invalidateCache(ownerID)
		return nil
	})
}

func (s *Synchronizer) viewOf(oc *ownerCart) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return oc.view.Clone()
}

func (s *Synchronizer) stockFor(ctx context.Context, line domain.CartLine, inCart bool, productID string) (int, bool) {
	if inCart && line.AvailableStock != nil {
		return *line.AvailableStock, true
	}
	if s.products == nil {
		return 0, false
	}
	p, ok := s.products.Lookup(ctx, productID)
	if !ok {
		return 0, false
	}
	return p.Quantity, true
}

func (s *Synchronizer) enrichLines(ctx context.Context, c *domain.Cart) {
	if s.products == nil {
		return
	}
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.UnitPrice.Valid && l.AvailableStock != nil && l.ProductName != "" {
			continue
		}
		if p, ok := s.products.Lookup(ctx, l.ProductID); ok {
			enrich(l, p)
		}
	}
}

func stockError(left int) error {
	if left < 1 {
		return &domain.ValidationError{Field: "quantity", Message: "No more units of this product are in stock"}
	}
	return &domain.ValidationError{Field: "quantity", Message: fmt.Sprintf("Only %d more can be added", left)}
}

// restoreFromCache seeds a never-loaded view with the cached last-known-good cart.
func (s *Synchronizer) restoreFromCache(ctx context.Context, ownerID string, oc *ownerCart) {
	s.mu.Lock()
	loaded := oc.loaded
	s.mu.Unlock()
	if loaded || s.cache == nil {
		return
	}

	cached, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Printf(ctx, "cache get error: %v", err)
		}
		return
	}
	s.mu.Lock()
	if !oc.loaded {
		oc.view, oc.loaded = *cached, true
	}
	s.mu.Unlock()
}

func (s *Synchronizer) storeView(ownerID string, c domain.Cart) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, ownerID, &c); err != nil {
		logger.Printf(ctx, "cache set error: %v", err)
	}
}

func (s *Synchronizer) invalidateCache(ownerID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		logger.Printf(ctx, "cache invalidate error: %v", err)
	}
}
