package config

import (
	"strings"
	"time"
)

const (
	backendURLVar     = "BACKEND_URL"
	expoBackendURLVar = "EXPO_PUBLIC_BACKEND_URL"
)

type Backend struct{}

var _ BackendConfig = Backend{}

// GetBackendURL returns the backend origin without a trailing slash.
// BACKEND_URL wins over the mobile app's EXPO_PUBLIC_BACKEND_URL.
func (Backend) GetBackendURL() string {
	url := GetEnv(backendURLVar, GetEnv(expoBackendURLVar, "http://localhost:8000"))
	return strings.TrimRight(url, "/")
}

func (Backend) GetBackendTimeout() time.Duration {
	return getDuration("BACKEND_TIMEOUT", 10*time.Second)
}

// GetRefreshTimeout bounds one shared refresh round trip.
func (Backend) GetRefreshTimeout() time.Duration {
	return getDuration("REFRESH_TIMEOUT", 15*time.Second)
}
