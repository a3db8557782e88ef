package activity

import (
	"github.com/fitd-tech/moodring-vibe/session"
)

// SessionEvents is implemented by session.Manager.
type SessionEvents interface {
	Subscribe(fn func(session.Event)) func()
}

// Follow ties the poller to the session lifecycle: a login, restore or
// explicit adopt (re)starts polling, logout stops it. Refreshes only
// update the handle's token; the loop keeps its timer. The returned
// function detaches the poller.
func (p *Poller) Follow(events SessionEvents) func() {
	return events.Subscribe(func(e session.Event) {
		switch e.Kind {
		case session.EventLoggedOut:
			p.Stop()
		case session.EventAdopted:
			if e.Cause == session.CauseRefresh {
				p.retoken(e.Session)
				return
			}
			if p.pollingFor(e.Session) {
				return
			}
			if _, err := p.Start(e.Session); err != nil {
				p.log.Warn().Err(err).Msg("Failed to start polling")
			}
		}
	})
}

func (p *Poller) pollingFor(s *session.Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.handle
	return h != nil && s != nil && h.userID == s.User.ID && h.token == s.DelegatedToken()
}

func (p *Poller) retoken(s *session.Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if h := p.handle; h != nil && h.userID == s.User.ID {
		h.token = s.DelegatedToken()
	}
}
