package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kangoro5/leather-walk/internal/cart"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/events"
	"github.com/kangoro5/leather-walk/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	SuccessMessage = "Order placed successfully!"
	genericFailure = "Failed to place order. Please try again."
)

type Carts interface {
	View(ownerID string) cart.View
	FetchCart(ctx context.Context, ownerID string) (domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type OrderPlacer interface {
	Create(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
}

type Identities interface {
	Identity() (domain.Identity, bool)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.OrderPlaced) error
}

// Snapshot is what the checkout view renders.
type Snapshot struct {
	Status  Status        `json:"status"`
	Form    Form          `json:"form"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Order   *domain.Order `json:"order,omitempty"`
}

// Orchestrator drives one shopper's checkout from validation to order placement.
type Orchestrator struct {
	carts     Carts
	orders    OrderPlacer
	session   Identities
	publisher EventPublisher
	shipping  decimal.Decimal
	now       func() time.Time
	newKey    func() string
	onStatus  func(Status)

	mu      sync.Mutex
	status  Status
	form    Form
	message string
	lastErr string
	order   *domain.Order
}

type Option func(*Orchestrator)

func WithShippingCost(d decimal.Decimal) Option {
	return func(o *Orchestrator) { o.shipping = d }
}

func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithStatusHook observes every status change. fn runs with the orchestrator locked and
// must not call back into it.
func WithStatusHook(fn func(Status)) Option {
	return func(o *Orchestrator) { o.onStatus = fn }
}

func NewOrchestrator(carts Carts, orders OrderPlacer, session Identities, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		carts:     carts,
		orders:    orders,
		session:   session,
		publisher: events.Nop{},
		shipping:  decimal.NewFromInt(500),
		now:       time.Now,
		newKey:    uuid.NewString,
		status:    StatusIdle,
	}
	if identity, ok := session.Identity(); ok {
		o.form = DefaultForm(identity)
	} else {
		o.form = DefaultForm(domain.Identity{})
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{Status: o.status, Form: o.form, Message: o.message, Error: o.lastErr, Order: o.order}
}

// ShippingCost is the flat fee added to every order.
func (o *Orchestrator) ShippingCost() decimal.Decimal {
	return o.shipping
}

// ResetForm discards entered values, keeping what the identity pre-fills.
func (o *Orchestrator) ResetForm() Form {
	identity, _ := o.session.Identity()
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.status.Busy() {
		o.form = DefaultForm(identity)
	}
	return o.form
}

// Submit validates f and places the order. Only one submission runs at a time; a
// concurrent call fails with ErrSubmitInProgress.
func (o *Orchestrator) Submit(ctx context.Context, f Form) (*domain.Order, error) {
	identity, ok := o.session.Identity()
	if !ok {
		return nil, domain.ErrLoginRequired
	}

	if err := o.begin(f); err != nil {
		return nil, err
	}

	view := o.carts.View(identity.ID)
	current := view.Cart
	if !view.Loaded {
		var err error
		if current, err = o.carts.FetchCart(ctx, identity.ID); err != nil {
			return nil, o.abort(ctx, err)
		}
	}
	if err := f.Validate(current); err != nil {
		return nil, o.abort(ctx, err)
	}

	if err := o.transition(StatusSubmitting); err != nil {
		return nil, o.abort(ctx, err)
	}

	// prices are captured from a fresh fetch, not the possibly stale view
	fresh, err := o.carts.FetchCart(ctx, identity.ID)
	if err != nil {
		return nil, o.abort(ctx, err)
	}
	draft, err := BuildDraft(fresh, f, o.shipping, o.newKey(), o.now())
	if err != nil {
		return nil, o.abort(ctx, err)
	}

	order, err := o.orders.Create(ctx, draft)
	if err != nil {
		return nil, o.abort(ctx, fmt.Errorf("place order: %w", err))
	}

	o.succeed(ctx, identity, draft, order)
	return order, nil
}

func (o *Orchestrator) begin(f Form) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Busy() {
		return domain.ErrSubmitInProgress
	}
	if err := o.setStatusLocked(StatusValidating); err != nil {
		return err
	}
	o.form = f
	o.message, o.lastErr, o.order = "", "", nil
	return nil
}

func (o *Orchestrator) transition(to Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.setStatusLocked(to)
}

func (o *Orchestrator) setStatusLocked(to Status) error {
	if !CanTransitionTo(o.status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, o.status, to)
	}
	o.status = to
	if o.onStatus != nil {
		o.onStatus(to)
	}
	return nil
}

// abort records err for display and returns to Idle, keeping the entered form. A failed
// submission passes through Failed on the way.
func (o *Orchestrator) abort(ctx context.Context, err error) error {
	logger.Printf(ctx, "checkout failed: %v", err)
	msg := domain.UserMessage(err, genericFailure)
	if errors.Is(err, domain.ErrEmptyCart) {
		msg = "Your cart is empty."
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == StatusSubmitting {
		_ = o.setStatusLocked(StatusFailed)
	}
	_ = o.setStatusLocked(StatusIdle)
	o.lastErr = msg
	return err
}

func (o *Orchestrator) succeed(ctx context.Context, identity domain.Identity, draft domain.OrderDraft, order *domain.Order) {
	if err := o.carts.Clear(context.WithoutCancel(ctx), identity.ID); err != nil {
		logger.Printf(ctx, "checkout cart clear error: %v", err)
	}

	o.mu.Lock()
	_ = o.setStatusLocked(StatusSucceeded)
	o.form = DefaultForm(identity)
	o.message = SuccessMessage
	o.order = order
	o.mu.Unlock()

	ev := events.NewOrderPlaced(draft.IdempotencyKey, order, draft)
	if err := o.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logger.Printf(ctx, "order placed event publish error: %v", err)
	}
}
