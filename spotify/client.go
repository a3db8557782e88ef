package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fitd-tech/moodring-vibe/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"

	RouteCurrentlyPlaying = "/me/player/currently-playing"
	RouteRecentlyPlayed   = "/me/player/recently-played"

	maxBody = 1 << 20
)

// Client reads the user's listening activity. It is best effort: the only
// error it returns is one wrapping errors.ErrTokenExpired, for a 401. Every
// other failure degrades to no data.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

func New(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "spotify").Logger()
	return c
}

// CurrentlyPlaying returns the actively playing track, or nil when nothing
// is playing, playback is paused, or the request failed for any reason other
// than an expired token.
func (c *Client) CurrentlyPlaying(ctx context.Context, token string) (*CurrentlyPlaying, error) {
	status, body, err := c.get(ctx, token, RouteCurrentlyPlaying, nil)
	if err != nil {
		c.log.Debug().Err(err).Msg("Currently playing fetch error")
		return nil, nil
	}

	switch {
	case status == http.StatusUnauthorized:
		return nil, errors.Wrapf(errors.ErrTokenExpired, "[spotify CurrentlyPlaying]")
	case status == http.StatusNoContent:
		return nil, nil
	case status != http.StatusOK:
		c.log.Debug().Int("status", status).Msg("Currently playing fetch failed")
		return nil, nil
	case len(bytes.TrimSpace(body)) == 0:
		return nil, nil
	}

	var resp currentlyPlayingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.Debug().Err(err).Msg("Currently playing decode error")
		return nil, nil
	}
	if resp.Item == nil || !resp.IsPlaying {
		return nil, nil
	}

	return &CurrentlyPlaying{
		Name:          resp.Item.Name,
		Artist:        resp.Item.artist(),
		Album:         resp.Item.Album.Name,
		AlbumImageURL: resp.Item.albumImageURL(),
		IsPlaying:     true,
	}, nil
}

// RecentTracks returns up to limit recently played tracks, newest first.
// Failures other than an expired token yield an empty slice.
func (c *Client) RecentTracks(ctx context.Context, token string, limit int) ([]RecentTrack, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	status, body, err := c.get(ctx, token, RouteRecentlyPlayed, query)
	if err != nil {
		c.log.Debug().Err(err).Msg("Recent tracks fetch error")
		return []RecentTrack{}, nil
	}

	if status == http.StatusUnauthorized {
		return nil, errors.Wrapf(errors.ErrTokenExpired, "[spotify RecentTracks]")
	}
	if status < 200 || status > 299 {
		c.log.Debug().Int("status", status).Msg("Recent tracks fetch failed")
		return []RecentTrack{}, nil
	}

	var resp recentTracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.Debug().Err(err).Msg("Recent tracks decode error")
		return []RecentTrack{}, nil
	}

	tracks := make([]RecentTrack, 0, len(resp.Items))
	for _, item := range resp.Items {
		tracks = append(tracks, RecentTrack{
			Name:          item.Track.Name,
			Artist:        item.Track.artist(),
			Album:         item.Track.Album.Name,
			AlbumImageURL: item.Track.albumImageURL(),
			PlayedAt:      item.PlayedAt,
		})
	}
	return tracks, nil
}

func (c *Client) get(ctx context.Context, token, route string, query url.Values) (int, []byte, error) {
	u := c.baseURL + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("[spotify get] build request: %w", err)
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("[spotify get] %s: %w", route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("[spotify get] read %s: %w", route, err)
	}
	return resp.StatusCode, body, nil
}
