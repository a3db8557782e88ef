package activity

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/clock"
	"github.com/fitd-tech/moodring-vibe/internal/errors"
	"github.com/fitd-tech/moodring-vibe/session"
	"github.com/fitd-tech/moodring-vibe/spotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultRecentLimit = 10
)

// SessionSource is the part of session.Manager the poller depends on.
type SessionSource interface {
	Current() *session.Session
	IsExpired(s *session.Session) bool
	Refresh(ctx context.Context, userID int64) (*session.Session, error)
}

// Fetcher reads listening activity. A returned error wrapping
// errors.ErrTokenExpired asks for a refresh; other errors mean no data.
type Fetcher interface {
	CurrentlyPlaying(ctx context.Context, token string) (*spotify.CurrentlyPlaying, error)
	RecentTracks(ctx context.Context, token string, limit int) ([]spotify.RecentTrack, error)
}

// Snapshot is the activity published by one tick. Records are never
// mutated after publication.
type Snapshot struct {
	UserID           int64
	CurrentlyPlaying *spotify.CurrentlyPlaying
	RecentTracks     []spotify.RecentTrack
	UpdatedAt        time.Time
}

// Poller periodically fetches the current user's activity. At most one
// PollHandle is active at a time.
type Poller struct {
	sessions    SessionSource
	fetcher     Fetcher
	clock       clock.Clock
	interval    time.Duration
	recentLimit int
	log         zerolog.Logger

	// deliverMu is held while subscribers run and while the handle is
	// replaced, so no snapshot reaches a subscriber after Stop returns.
	deliverMu sync.Mutex

	mu           sync.Mutex
	handle       *PollHandle
	snapshot     Snapshot
	tickSeq      uint64
	publishedSeq uint64
	subs         map[int]func(Snapshot)
	nextSub      int
}

type PollerOption func(*Poller)

// WithClock sets the clock driving the poll timer (primarily for testing)
func WithClock(c clock.Clock) PollerOption {
	return func(p *Poller) {
		p.clock = c
	}
}

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithRecentLimit sets how many recently played tracks each tick asks for.
func WithRecentLimit(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.recentLimit = n
		}
	}
}

func WithLogger(l zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.log = l
	}
}

func NewPoller(sessions SessionSource, fetcher Fetcher, opts ...PollerOption) *Poller {
	p := &Poller{
		sessions:    sessions,
		fetcher:     fetcher,
		clock:       clock.Real(),
		interval:    DefaultInterval,
		recentLimit: DefaultRecentLimit,
		log:         log.Logger,
		subs:        make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("component", "activity").Logger()
	return p
}

// Start tears down any running loop, arms the periodic timer for s and runs
// an immediate tick in the background.
func (p *Poller) Start(s *session.Session) (*PollHandle, error) {
	if !s.Valid() {
		p.Stop()
		return nil, errors.Wrapf(errors.ErrNoSession, "[Poller Start]")
	}

	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	p.mu.Lock()
	if old := p.handle; old != nil {
		old.cancel()
		p.log.Debug().Str("handle", old.id).Msg("Replaced poll loop")
	}
	h := &PollHandle{
		id:     uuid.NewString(),
		userID: s.User.ID,
		token:  s.DelegatedToken(),
		ticker: p.clock.NewTicker(p.interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	p.handle = h
	if p.snapshot.UserID != h.userID {
		p.snapshot = Snapshot{}
	}
	p.mu.Unlock()

	p.log.Debug().Str("handle", h.id).Int64("user_id", h.userID).Dur("interval", p.interval).Msg("Poll loop started")
	go p.loop(h)
	return h, nil
}

// Stop cancels the timer synchronously and clears the published activity.
// A tick already in flight finishes, but its result is discarded. If
// subscribers are being called, Stop waits for them to return; no snapshot
// is delivered after Stop returns.
func (p *Poller) Stop() {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	p.mu.Lock()
	h := p.handle
	if h != nil {
		h.cancel()
		p.handle = nil
		p.snapshot = Snapshot{}
	}
	p.mu.Unlock()

	if h != nil {
		p.log.Debug().Str("handle", h.id).Msg("Poll loop stopped")
	}
}

// Close stops polling and waits for the loop goroutine to exit. It must not
// be called from a Subscribe callback.
func (p *Poller) Close() {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()

	p.Stop()
	if h != nil {
		<-h.done
	}
}

// RefreshNow runs an out-of-cycle tick on the caller's goroutine. The
// periodic timer is left as it is.
func (p *Poller) RefreshNow(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return Snapshot{}, errors.ErrNotPolling
	}

	p.runTick(ctx, h)
	if h.stopped() {
		return Snapshot{}, errors.ErrNotPolling
	}
	return p.Snapshot(), nil
}

// Snapshot returns the last published activity.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Handle returns the active poll handle, or nil when idle.
func (p *Poller) Handle() *PollHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.handle == nil:
		return StateIdle
	case p.handle.ticking.Load() > 0:
		return StateTicking
	default:
		return StatePolling
	}
}

// Subscribe registers fn to receive every published Snapshot and returns a
// function that removes it. Callbacks run one at a time on the goroutine
// that ran the tick. They must not call Start, Stop or Close directly; hand
// those off to another goroutine.
func (p *Poller) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Poller) loop(h *PollHandle) {
	defer close(h.done)

	p.runTick(context.Background(), h)
	for {
		select {
		case <-h.stop:
			return
		case <-h.ticker.C:
			if h.stopped() {
				return
			}
			p.runTick(context.Background(), h)
		}
	}
}

func (p *Poller) runTick(ctx context.Context, h *PollHandle) {
	if h.stopped() {
		return
	}
	h.ticking.Add(1)
	defer h.ticking.Add(-1)

	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	p.mu.Lock()
	p.tickSeq++
	seq := p.tickSeq
	p.mu.Unlock()

	snap, ok := p.tick(ctx, h)
	if !ok {
		return
	}
	p.publish(h, seq, snap)
}

// tick performs one freshness check and the two fetches. It reports false
// when the tick was skipped and nothing should be published.
func (p *Poller) tick(ctx context.Context, h *PollHandle) (Snapshot, bool) {
	s := p.sessions.Current()
	if s == nil || s.User.ID != h.userID {
		p.log.Debug().Str("handle", h.id).Msg("Session changed, skipping tick")
		return Snapshot{}, false
	}

	if p.sessions.IsExpired(s) {
		refreshed, err := p.sessions.Refresh(ctx, s.User.ID)
		if err != nil {
			p.log.Debug().Err(err).Int64("user_id", s.User.ID).Msg("Refresh before tick failed, skipping tick")
			return Snapshot{}, false
		}
		s = refreshed
	}

	var (
		userID  = s.User.ID
		token   = s.DelegatedToken()
		playing *spotify.CurrentlyPlaying
		recent  []spotify.RecentTrack
		g       errgroup.Group
	)
	g.Go(func() error {
		playing = fetchWithRetry(ctx, p, userID, token, "currently_playing", p.fetcher.CurrentlyPlaying)
		return nil
	})
	g.Go(func() error {
		recent = fetchWithRetry(ctx, p, userID, token, "recent_tracks", func(ctx context.Context, token string) ([]spotify.RecentTrack, error) {
			return p.fetcher.RecentTracks(ctx, token, p.recentLimit)
		})
		return nil
	})
	_ = g.Wait()

	if recent == nil {
		recent = []spotify.RecentTrack{}
	}
	return Snapshot{
		UserID:           userID,
		CurrentlyPlaying: playing,
		RecentTracks:     recent,
		UpdatedAt:        p.clock.Now(),
	}, true
}

// fetchWithRetry calls fetch once. If the token was rejected it refreshes
// the session once and retries once; any other outcome is the zero value.
func fetchWithRetry[T any](ctx context.Context, p *Poller, userID int64, token, name string, fetch func(context.Context, string) (T, error)) T {
	var zero T

	v, err := fetch(ctx, token)
	if err == nil {
		return v
	}
	if !errors.Is(err, errors.ErrTokenExpired) {
		p.log.Debug().Err(err).Str("fetch", name).Msg("Activity fetch failed")
		return zero
	}

	refreshed, err := p.sessions.Refresh(ctx, userID)
	if err != nil {
		p.log.Debug().Err(err).Str("fetch", name).Msg("Refresh after rejected token failed")
		return zero
	}

	v, err = fetch(ctx, refreshed.DelegatedToken())
	if err != nil {
		p.log.Debug().Err(err).Str("fetch", name).Msg("Activity fetch failed after refresh")
		return zero
	}
	return v
}

func (p *Poller) publish(h *PollHandle, seq uint64, snap Snapshot) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	if p.handle != h || h.stopped() {
		p.mu.Unlock()
		p.log.Debug().Str("handle", h.id).Msg("Discarding tick result from stopped poll loop")
		return
	}
	if seq < p.publishedSeq {
		p.mu.Unlock()
		return
	}
	p.publishedSeq = seq
	p.snapshot = snap

	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// PollHandle is one running poll loop for one user and token.
type PollHandle struct {
	id      string
	userID  int64
	token   string
	ticker  *clock.Ticker
	stop    chan struct{}
	done    chan struct{}
	halted  atomic.Bool
	ticking atomic.Int32
}

func (h *PollHandle) ID() string { return h.id }

func (h *PollHandle) UserID() int64 { return h.userID }

// Done is closed once the loop goroutine has exited.
func (h *PollHandle) Done() <-chan struct{} { return h.done }

func (h *PollHandle) stopped() bool { return h.halted.Load() }

// cancel must be called with the poller's mutex held, once per handle.
func (h *PollHandle) cancel() {
	h.halted.Store(true)
	h.ticker.Stop()
	close(h.stop)
}
