package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/clock"
	"github.com/fitd-tech/moodring-vibe/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRefreshTimeout = 15 * time.Second

// Gateway is the backend that issues and refreshes sessions.
type Gateway interface {
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error)
	Refresh(ctx context.Context, userID int64) (*Session, error)
}

// Cause records why a session was adopted.
type Cause int

const (
	CauseAdopt Cause = iota
	CauseLogin
	CauseRestore
	CauseRefresh
)

func (c Cause) String() string {
	switch c {
	case CauseLogin:
		return "login"
	case CauseRestore:
		return "restore"
	case CauseRefresh:
		return "refresh"
	default:
		return "adopt"
	}
}

type EventKind int

const (
	EventAdopted EventKind = iota
	EventLoggedOut
)

// Event is delivered to subscribers after the manager's state has changed.
// Session is nil for EventLoggedOut.
type Event struct {
	Kind    EventKind
	Cause   Cause
	Session *Session
}

// refreshCall is the single outstanding refresh for one user. Its result
// fans out to every waiter when done is closed.
type refreshCall struct {
	done    chan struct{}
	waiters int
	session *Session
	err     error
}

// Manager owns the current session, persists it, and collapses concurrent
// refreshes for the same user into one backend call.
type Manager struct {
	gateway        Gateway
	store          Store
	clock          clock.Clock
	log            zerolog.Logger
	refreshTimeout time.Duration

	// persistMu orders store writes to match in-memory state changes.
	persistMu sync.Mutex

	mu       sync.RWMutex
	current  *Session
	inflight map[int64]*refreshCall

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the clock used for freshness checks (primarily for testing)
func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// WithRefreshTimeout bounds the shared backend refresh call.
func WithRefreshTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

func NewManager(gateway Gateway, store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		gateway:        gateway,
		store:          store,
		clock:          clock.Real(),
		log:            log.Logger,
		refreshTimeout: defaultRefreshTimeout,
		inflight:       make(map[int64]*refreshCall),
		subs:           make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "session").Logger()
	return m
}

// Current returns a copy of the current session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// IsExpired applies the freshness rule using the manager's clock.
func (m *Manager) IsExpired(s *Session) bool {
	return IsExpired(s, m.clock.Now())
}

// Subscribe registers fn for session events and returns a function that
// removes it. fn runs synchronously on the goroutine that caused the change.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

// Adopt replaces the current session and persists it.
func (m *Manager) Adopt(ctx context.Context, s *Session) error {
	return m.adopt(ctx, s, CauseAdopt)
}

// Login exchanges an authorization code through the backend and adopts the
// resulting session. A *backend.AuthFailure from the gateway is returned as is.
func (m *Manager) Login(ctx context.Context, code, codeVerifier string) (*Session, error) {
	s, err := m.gateway.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	if err := m.adopt(ctx, s, CauseLogin); err != nil {
		return nil, err
	}
	m.log.Info().Int64("user_id", s.User.ID).Msg("Logged in")
	return s.Clone(), nil
}

// Restore loads the persisted session. Store failures and unreadable blobs
// are treated as "no stored session"; it returns nil in that case.
func (m *Manager) Restore(ctx context.Context) *Session {
	blob, err := m.store.Get(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to load stored session")
		return nil
	}
	if len(blob) == 0 {
		return nil
	}

	s, err := Decode(blob)
	if err == nil && !s.Valid() {
		err = errors.ErrIncompleteSession
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("Discarding unreadable stored session")
		if err := m.store.Delete(ctx); err != nil {
			m.log.Warn().Err(err).Msg("Failed to delete stored session")
		}
		return nil
	}

	m.persistMu.Lock()
	m.mu.Lock()
	m.current = s.Clone()
	m.mu.Unlock()
	m.persistMu.Unlock()

	m.notify(Event{Kind: EventAdopted, Cause: CauseRestore, Session: s.Clone()})
	return s
}

// Refresh obtains a new session for userID from the backend. If a refresh
// for that user is already outstanding, the caller waits for it instead of
// starting another. On failure the current session is left untouched.
func (m *Manager) Refresh(ctx context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	call, ok := m.inflight[userID]
	if !ok {
		call = &refreshCall{done: make(chan struct{})}
		m.inflight[userID] = call
		go m.runRefresh(context.WithoutCancel(ctx), userID, call)
	}
	call.waiters++
	m.mu.Unlock()

	select {
	case <-call.done:
		if call.err != nil {
			return nil, call.err
		}
		return call.session.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) runRefresh(ctx context.Context, userID int64, call *refreshCall) {
	ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	s, err := m.gateway.Refresh(ctx, userID)
	switch {
	case err != nil:
	case !s.Valid():
		err = errors.Wrapf(errors.ErrIncompleteSession, "[Manager Refresh] user %d", userID)
	case s.User.ID != userID:
		err = errors.Wrapf(errors.ErrSessionChanged, "[Manager Refresh] backend returned user %d for %d", s.User.ID, userID)
	default:
		adopted := m.replace(ctx, s, func(cur *Session) bool {
			return cur != nil && cur.User.ID == userID
		})
		if !adopted {
			err = errors.Wrapf(errors.ErrSessionChanged, "[Manager Refresh] user %d", userID)
		}
	}

	m.mu.Lock()
	delete(m.inflight, userID)
	if err != nil {
		call.err = err
	} else {
		call.session = s.Clone()
	}
	waiters := call.waiters
	m.mu.Unlock()

	// Subscribers see the new session before any waiter returns.
	defer close(call.done)
	if err != nil {
		m.log.Debug().Err(err).Int64("user_id", userID).Int("waiters", waiters).Msg("Token refresh failed")
		return
	}
	m.log.Debug().Int64("user_id", userID).Int("waiters", waiters).Msg("Token refreshed")
	m.notify(Event{Kind: EventAdopted, Cause: CauseRefresh, Session: s.Clone()})
}

// Logout clears the session in memory and in the store, then tells
// subscribers so the poller can stop.
func (m *Manager) Logout(ctx context.Context) {
	m.persistMu.Lock()
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.store.Delete(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Failed to delete stored session")
	}
	m.persistMu.Unlock()

	m.log.Info().Msg("Logged out")
	m.notify(Event{Kind: EventLoggedOut})
}

func (m *Manager) adopt(ctx context.Context, s *Session, cause Cause) error {
	if !s.Valid() {
		return errors.Wrapf(errors.ErrIncompleteSession, "[Manager adopt] %s", cause)
	}
	m.replace(ctx, s, nil)
	m.notify(Event{Kind: EventAdopted, Cause: cause, Session: s.Clone()})
	return nil
}

// replace swaps in s when guard accepts the current session (a nil guard
// always accepts) and writes the full blob to the store.
func (m *Manager) replace(ctx context.Context, s *Session, guard func(cur *Session) bool) bool {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	if guard != nil && !guard(m.current) {
		m.mu.Unlock()
		return false
	}
	m.current = s.Clone()
	m.mu.Unlock()

	blob, err := Encode(s)
	if err == nil {
		err = m.store.Set(ctx, blob)
	}
	if err != nil {
		m.log.Warn().Err(err).Int64("user_id", s.User.ID).Msg("Failed to persist session")
	}
	return true
}

func (m *Manager) notify(e Event) {
	m.subsMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
