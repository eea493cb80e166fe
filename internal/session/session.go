package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kangoro5/leather-walk/internal/domain"
)

// State is what dependents observe. IsReady is false until Start has checked storage;
// consumers must not treat an unready session as logged out.
type State struct {
	IsAuthenticated bool
	Identity        *domain.Identity
	IsReady         bool
}

// Session holds the authenticated identity and its bearer token.
type Session struct {
	store Store

	mu       sync.RWMutex
	identity *domain.Identity
	token    string
	ready    bool

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

func New(store Store) *Session {
	return &Session{store: store, subs: make(map[int]func(State))}
}

// Start loads the persisted session once. A stored user that does not parse clears
// both keys. The session is ready afterwards even when storage failed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.RLock()
	started := s.ready
	s.mu.RUnlock()
	if started {
		return nil
	}

	identity, token, err := s.load(ctx)

	s.mu.Lock()
	s.identity, s.token, s.ready = identity, token, true
	s.mu.Unlock()
	s.notify()

	return err
}

func (s *Session) load(ctx context.Context) (*domain.Identity, string, error) {
	rawUser, errUser := s.store.Get(ctx, UserKey)
	token, errToken := s.store.Get(ctx, TokenKey)
	if errors.Is(errUser, ErrKeyNotFound) || errors.Is(errToken, ErrKeyNotFound) {
		return nil, "", nil
	}
	if err := errors.Join(errUser, errToken); err != nil {
		return nil, "", fmt.Errorf("load session: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil || identity.ID == "" || token == "" {
		log.Printf("stored session is corrupt, clearing it: %v", err)
		if errDelete := s.store.Delete(ctx, UserKey, TokenKey); errDelete != nil {
			return nil, "", fmt.Errorf("clear corrupt session: %w", errDelete)
		}
		return nil, "", nil
	}
	return &identity, token, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{IsReady: s.ready, IsAuthenticated: s.identity != nil}
	if s.identity != nil {
		id := *s.identity
		st.Identity = &id
	}
	return st
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the current identity, if any.
func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Login persists identity and token, then marks the session authenticated.
func (s *Session) Login(ctx context.Context, identity domain.Identity, token string) error {
	if identity.ID == "" {
		return &domain.ValidationError{Field: "user", Message: "user id is required"}
	}
	if token == "" {
		return &domain.ValidationError{Field: "token", Message: "token is required"}
	}
	if err := s.persist(ctx, identity); err != nil {
		return err
	}
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	s.mu.Lock()
	s.identity, s.token, s.ready = &identity, token, true
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateIdentity replaces the stored profile of an authenticated session.
func (s *Session) UpdateIdentity(ctx context.Context, identity domain.Identity) error {
	s.mu.RLock()
	current := s.identity
	s.mu.RUnlock()
	if current == nil {
		return domain.ErrLoginRequired
	}
	if identity.ID == "" {
		identity.ID = current.ID
	}
	if err := s.persist(ctx, identity); err != nil {
		return err
	}

	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) persist(ctx context.Context, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.store.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Logout forgets the identity immediately and clears storage. The session stays logged
// out even when clearing storage fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.identity, s.token = nil, ""
	s.mu.Unlock()
	s.notify()

	if err := s.store.Delete(ctx, UserKey, TokenKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Expire is the forced logout run when the API rejects the token.
func (s *Session) Expire(ctx context.Context) {
	if _, ok := s.Identity(); !ok {
		return
	}
	log.Println("session token rejected by api, logging out")
	if err := s.Logout(context.WithoutCancel(ctx)); err != nil {
		log.Printf("session expire error: %v", err)
	}
}

// Subscribe registers fn to be called synchronously after every state change.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	st := s.State()
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
