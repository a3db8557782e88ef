package session

import "time"

// ExpiryBuffer is how close to expiry a delegated token may get before it is
// refreshed. It covers the music API call that follows a freshness check.
const ExpiryBuffer = 5 * time.Minute

// IsExpired reports whether the session's delegated token should be
// refreshed before use at now. A session without an expiry is always
// treated as expired, since a token of unknown age cannot be trusted.
func IsExpired(s *Session, now time.Time) bool {
	if s == nil || s.User.TokenExpiresAt == nil || s.User.TokenExpiresAt.IsZero() {
		return true
	}
	return s.User.TokenExpiresAt.Sub(now) <= ExpiryBuffer
}
