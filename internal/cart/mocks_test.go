package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/domain"
)

// fakeCartAPI is an in-memory server cart. Add merges like the real endpoint.
type fakeCartAPI struct {
	mu       sync.Mutex
	carts    map[string][]api.LineRef
	products map[string]domain.Product
	populate bool // send productId as a populated product object

	getErr     error
	replaceErr error
	addErr     error

	// replaceGate, when set, blocks Replace until it is closed.
	replaceGate chan struct{}
	// getGate, when set, blocks Get until it is closed or ctx is done. getEntered
	// receives a signal as Get starts waiting.
	getGate    chan struct{}
	getEntered chan struct{}

	getCalls     int
	replaceCalls int
	addCalls     int
	replaced     [][]api.LineRef

	inFlight    int
	maxInFlight int
}

func newFakeCartAPI() *fakeCartAPI {
	return &fakeCartAPI{carts: map[string][]api.LineRef{}, products: map[string]domain.Product{}}
}

func (f *fakeCartAPI) enter() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
}

func (f *fakeCartAPI) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeCartAPI) Get(ctx context.Context, ownerID string) (*api.CartPayload, error) {
	if f.getGate != nil {
		select {
		case f.getEntered <- struct{}{}:
		default:
		}
		select {
		case <-f.getGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.enter()
	defer f.leave()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	lines, ok := f.carts[ownerID]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "cart"}
	}
	payload := &api.CartPayload{}
	for _, l := range lines {
		var ref []byte
		if p, known := f.products[l.ProductID]; known && f.populate {
			ref, _ = json.Marshal(p)
		} else {
			ref, _ = json.Marshal(l.ProductID)
		}
		qty, _ := json.Marshal(l.Quantity)
		payload.Products = append(payload.Products, api.RawCartLine{ProductID: ref, Quantity: qty})
	}
	return payload, nil
}

func (f *fakeCartAPI) Replace(ctx context.Context, ownerID string, lines []api.LineRef) error {
	f.enter()
	defer f.leave()

	f.mu.Lock()
	gate := f.replaceGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	f.replaced = append(f.replaced, append([]api.LineRef(nil), lines...))
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.carts[ownerID] = append([]api.LineRef(nil), lines...)
	return nil
}

func (f *fakeCartAPI) Add(ctx context.Context, ownerID string, line api.LineRef) error {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	lines := f.carts[ownerID]
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			f.carts[ownerID] = lines
			return nil
		}
	}
	f.carts[ownerID] = append(lines, line)
	return nil
}

func (f *fakeCartAPI) set(ownerID string, lines ...api.LineRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[ownerID] = lines
}

func (f *fakeCartAPI) setReplaceErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceErr = err
}

func (f *fakeCartAPI) setGetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *fakeCartAPI) counts() (get, replace, add int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.replaceCalls, f.addCalls
}

// staticResolver is a fixed product catalog.
type staticResolver map[string]domain.Product

func (r staticResolver) Lookup(ctx context.Context, productID string) (domain.Product, bool) {
	p, ok := r[productID]
	return p, ok
}
