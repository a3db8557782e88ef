package config

import (
	"strings"
	"time"
)

type Spotify struct{}

var _ SpotifyConfig = Spotify{}

func (Spotify) GetSpotifyAPIURL() string {
	return strings.TrimRight(GetEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"), "/")
}

func (Spotify) GetSpotifyTimeout() time.Duration {
	return getDuration("SPOTIFY_TIMEOUT", 10*time.Second)
}

func (Spotify) GetRecentTracksLimit() int {
	limit := getInt("RECENT_TRACKS_LIMIT", 10)
	if limit < 1 || limit > 50 {
		return 10 // the recently-played endpoint accepts 1..50
	}
	return limit
}
