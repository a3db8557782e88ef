package spotify

import "github.com/fitd-tech/moodring-vibe/tagging"

// UnknownArtist stands in when a track lists no artists.
const UnknownArtist = "Unknown Artist"

// CurrentlyPlaying is the track the user is actively playing. A paused or
// absent track is reported as no record at all, so IsPlaying is always true
// on records this package returns.
type CurrentlyPlaying struct {
	Name          string  `json:"name"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album"`
	AlbumImageURL *string `json:"album_image_url,omitempty"`
	IsPlaying     bool    `json:"is_playing"`
}

func (c CurrentlyPlaying) SongID() string {
	return tagging.SongID(c.Name, c.Artist)
}

// RecentTrack is one entry of the recently-played history.
type RecentTrack struct {
	Name          string  `json:"name"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album"`
	AlbumImageURL *string `json:"album_image_url,omitempty"`
	PlayedAt      string  `json:"played_at"`
}

func (r RecentTrack) SongID() string {
	return tagging.SongID(r.Name, r.Artist)
}

// Wire shapes of the Web API responses.

type image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type track struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string  `json:"name"`
		Images []image `json:"images"`
	} `json:"album"`
}

type currentlyPlayingResponse struct {
	IsPlaying bool   `json:"is_playing"`
	Item      *track `json:"item"`
}

type recentTracksResponse struct {
	Items []struct {
		Track    track  `json:"track"`
		PlayedAt string `json:"played_at"`
	} `json:"items"`
}

func (t track) artist() string {
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return UnknownArtist
	}
	return t.Artists[0].Name
}

func (t track) albumImageURL() *string {
	if len(t.Album.Images) == 0 {
		return nil
	}
	url := t.Album.Images[0].URL
	return &url
}
