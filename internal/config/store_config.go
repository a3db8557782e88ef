package config

import "strings"

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Store struct{}

var _ StoreConfig = Store{}

// GetSessionStore returns one of StoreFile, StoreRedis or StoreMemory.
func (Store) GetSessionStore() string {
	switch kind := strings.ToLower(GetEnv("SESSION_STORE", StoreFile)); kind {
	case StoreRedis, StoreMemory:
		return kind
	default:
		return StoreFile
	}
}

func (Store) GetSessionFile() string {
	return GetEnv("SESSION_FILE", "./data/moodring_auth.json")
}

func (Store) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "moodring_auth")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return getInt("REDIS_DB", 0)
}
