package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/utils"
	"golang.org/x/oauth2"
)

// UserProfile is the backend's view of a user. Only ID, the delegated
// tokens and TokenExpiresAt drive the session lifecycle; the display
// fields are carried along for the UI.
type UserProfile struct {
	ID                  int64      `json:"id"`
	SpotifyID           string     `json:"spotify_id"`
	Email               string     `json:"email"`
	DisplayName         *string    `json:"display_name"`
	SpotifyAccessToken  *string    `json:"spotify_access_token"`
	SpotifyRefreshToken *string    `json:"spotify_refresh_token"`
	TokenExpiresAt      *Timestamp `json:"token_expires_at"`
	ProfileImageURL     *string    `json:"profile_image_url"`
	CreatedAt           string     `json:"created_at,omitempty"`
	UpdatedAt           string     `json:"updated_at,omitempty"`
}

// Session is what the backend returns from the exchange and refresh
// endpoints, and what gets persisted. It is either fully present or absent.
type Session struct {
	User        UserProfile `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Valid reports whether both halves of the session are set.
func (s *Session) Valid() bool {
	return s != nil && s.User.ID != 0 && s.AccessToken != ""
}

// DelegatedToken returns the Spotify access token, falling back to the
// backend access token when the profile carries none.
func (s *Session) DelegatedToken() string {
	if token := utils.Value(s.User.SpotifyAccessToken); token != "" {
		return token
	}
	return s.AccessToken
}

// OAuth2Token returns the delegated credential as an oauth2.Token. Expiry
// is zero when the backend did not report one.
func (s *Session) OAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  s.DelegatedToken(),
		TokenType:    "Bearer",
		RefreshToken: utils.Value(s.User.SpotifyRefreshToken),
	}
	if s.User.TokenExpiresAt != nil {
		token.Expiry = s.User.TokenExpiresAt.Time
	}
	return token
}

// Clone returns a deep copy so callers cannot mutate manager state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User.DisplayName = clonePtr(s.User.DisplayName)
	c.User.SpotifyAccessToken = clonePtr(s.User.SpotifyAccessToken)
	c.User.SpotifyRefreshToken = clonePtr(s.User.SpotifyRefreshToken)
	c.User.TokenExpiresAt = clonePtr(s.User.TokenExpiresAt)
	c.User.ProfileImageURL = clonePtr(s.User.ProfileImageURL)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return utils.Ptr(*v)
}

// Encode serialises the session into the persisted blob format.
func Encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a persisted blob.
func Decode(blob []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("[session Decode] %w", err)
	}
	return &s, nil
}

// Timestamp accepts RFC 3339 and the backend's zone-less timestamps,
// which are read as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("[Timestamp UnmarshalJSON] %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses an expiry in any format the backend has produced.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("[session ParseTimestamp] unrecognised timestamp %q", raw)
}

// ExpiringAt returns a Timestamp pointer for t.
func ExpiringAt(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}
