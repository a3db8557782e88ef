package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	BackendConfig
	SpotifyConfig
	PollingConfig
	StoreConfig
}

type EnvConfig interface {
	GetEnv() string
	GetAppName() string
	GetLogLevel() string
	IsDevelopment() bool
}

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
	GetRefreshTimeout() time.Duration
}

type SpotifyConfig interface {
	GetSpotifyAPIURL() string
	GetSpotifyTimeout() time.Duration
	GetRecentTracksLimit() int
}

type PollingConfig interface {
	GetPollInterval() time.Duration
}

type StoreConfig interface {
	GetSessionStore() string
	GetSessionFile() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type mainConfig struct {
	EnvVars
	Backend
	Spotify
	Polling
	Store
}

func New() Config {
	return mainConfig{}
}

// Load reads the given .env files into the process environment and returns
// the configuration. Missing files are not an error; variables already set
// in the environment win.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, err
		}
	}
	return New(), nil
}
