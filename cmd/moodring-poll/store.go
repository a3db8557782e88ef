package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/config"
	"github.com/fitd-tech/moodring-vibe/session"
	"github.com/fitd-tech/moodring-vibe/session/filestore"
	"github.com/fitd-tech/moodring-vibe/session/redisstore"
	"github.com/fitd-tech/moodring-vibe/session/storefake"
	"github.com/redis/go-redis/v9"
)

// openStore returns the session store selected by SESSION_STORE and a
// function releasing its resources.
func openStore(c config.StoreConfig) (session.Store, func(), error) {
	switch c.GetSessionStore() {
	case config.StoreFile:
		return filestore.New(c.GetSessionFile()), func() {}, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		return redisstore.New(client, c.GetSessionKey()), func() { _ = client.Close() }, nil
	case config.StoreMemory:
		return storefake.NewFakeSessionStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.GetSessionStore())
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
