package tagging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/httpjson"
	"github.com/fitd-tech/moodring-vibe/internal/utils"
	"github.com/fitd-tech/moodring-vibe/tagging"
	"github.com/stretchr/testify/require"
)

func TestSongID(t *testing.T) {
	require.Equal(t, "bohemian_rhapsody__queen", tagging.SongID("Bohemian Rhapsody", "Queen"))
	require.Equal(t, "don_t_stop__fleetwood_mac", tagging.SongID("  Don't Stop ", "Fleetwood Mac"))
	require.Equal(t, "caf___sigur_r_s", tagging.SongID("Café", "Sigur Rós"))

	first := tagging.SongID("Test Song", "Test Artist")
	for i := 0; i < 5; i++ {
		require.Equal(t, first, tagging.SongID("Test Song", "Test Artist"))
	}
}

type recorded struct {
	method string
	uri    string
	body   map[string]any
}

func setupServer(t *testing.T, status int, response string) (*tagging.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.uri = r.URL.RequestURI()
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return tagging.New(srv.URL, time.Second), rec
}

func TestClient_Tags(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusOK, `[{"id":1,"user_id":42,"name":"chill","created_at":"x","updated_at":"y"}]`)
		tags, err := c.UserTags(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, "GET", rec.method)
		require.Equal(t, "/users/42/tags", rec.uri)
		require.Len(t, tags, 1)
		require.Equal(t, "chill", tags[0].Name)
	})

	t.Run("create sets user id", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusOK, `{"id":7,"user_id":42,"name":"hype","color":"#ff0000"}`)
		tag, err := c.CreateTag(ctx, 42, tagging.NewTag{Name: "hype", Color: utils.Ptr("#ff0000")})
		require.NoError(t, err)
		require.Equal(t, "POST", rec.method)
		require.Equal(t, "/users/42/tags", rec.uri)
		require.Equal(t, map[string]any{"name": "hype", "color": "#ff0000", "user_id": float64(42)}, rec.body)
		require.Equal(t, int64(7), tag.ID)
	})

	t.Run("delete", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusNoContent, "")
		require.NoError(t, c.DeleteTag(ctx, 42, 7))
		require.Equal(t, "DELETE", rec.method)
		require.Equal(t, "/users/42/tags/7", rec.uri)
	})
}

func TestClient_SongTags(t *testing.T) {
	ctx := context.Background()
	songID := tagging.SongID("Test Song", "Test Artist")

	t.Run("list", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusOK, `[]`)
		tags, err := c.SongTags(ctx, songID, 42)
		require.NoError(t, err)
		require.Empty(t, tags)
		require.Equal(t, "/songs/test_song__test_artist/tags?user_id=42", rec.uri)
	})

	t.Run("add", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusOK, `{"id":3,"user_id":42,"song_id":"test_song__test_artist","tag_id":7}`)
		st, err := c.AddTagToSong(ctx, songID, 42, 7)
		require.NoError(t, err)
		require.Equal(t, "/songs/test_song__test_artist/tags", rec.uri)
		require.Equal(t, map[string]any{"user_id": float64(42), "tag_id": float64(7), "song_id": songID}, rec.body)
		require.Equal(t, int64(3), st.ID)
	})

	t.Run("remove", func(t *testing.T) {
		c, rec := setupServer(t, http.StatusOK, "")
		require.NoError(t, c.RemoveTagFromSong(ctx, songID, 42, 7))
		require.Equal(t, "DELETE", rec.method)
		require.Equal(t, "/songs/test_song__test_artist/tags/7?user_id=42", rec.uri)
	})

	t.Run("error status", func(t *testing.T) {
		c, _ := setupServer(t, http.StatusNotFound, "tag not found")
		err := c.RemoveTagFromSong(ctx, songID, 42, 99)
		var statusErr *httpjson.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusNotFound, statusErr.Status)
	})
}
