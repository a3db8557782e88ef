package tagging

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/httpjson"
)

type Tag struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Color     *string `json:"color,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type NewTag struct {
	Name   string  `json:"name"`
	Color  *string `json:"color,omitempty"`
	UserID int64   `json:"user_id"`
}

type SongTag struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	SongID    string `json:"song_id"`
	TagID     int64  `json:"tag_id"`
	CreatedAt string `json:"created_at"`
}

type newSongTag struct {
	UserID int64  `json:"user_id"`
	TagID  int64  `json:"tag_id"`
	SongID string `json:"song_id"`
}

// Client manages a user's tags and the tags attached to songs.
// Non-2xx responses come back as *httpjson.StatusError.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithClient(baseURL string, client *http.Client) *Client {
	return &Client{baseURL: baseURL, client: client}
}

func (c *Client) UserTags(ctx context.Context, userID int64) ([]Tag, error) {
	var tags []Tag
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/tags", userID), nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, userID int64, tag NewTag) (*Tag, error) {
	tag.UserID = userID
	var created Tag
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/tags", userID), tag, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteTag(ctx context.Context, userID, tagID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/tags/%d", userID, tagID), nil, nil)
}

func (c *Client) SongTags(ctx context.Context, songID string, userID int64) ([]Tag, error) {
	var tags []Tag
	path := fmt.Sprintf("/songs/%s/tags?user_id=%d", url.PathEscape(songID), userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) AddTagToSong(ctx context.Context, songID string, userID, tagID int64) (*SongTag, error) {
	body := newSongTag{UserID: userID, TagID: tagID, SongID: songID}
	var created SongTag
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/songs/%s/tags", url.PathEscape(songID)), body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) RemoveTagFromSong(ctx context.Context, songID string, userID, tagID int64) error {
	path := fmt.Sprintf("/songs/%s/tags/%d?user_id=%d", url.PathEscape(songID), tagID, userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := httpjson.Do(ctx, c.client, method, c.baseURL+path, body, out); err != nil {
		return fmt.Errorf("[tagging %s %s] %w", method, path, err)
	}
	return nil
}

var nonSongIDChars = regexp.MustCompile(`[^a-z0-9_]`)

// SongID derives the identifier tags are stored under from a track's name
// and artist. The same pair always yields the same id.
func SongID(name, artist string) string {
	id := strings.ToLower(strings.TrimSpace(name)) + "__" + strings.ToLower(strings.TrimSpace(artist))
	return nonSongIDChars.ReplaceAllString(id, "_")
}
