package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envVar      = "ENV"
	appNameVar  = "APP_NAME"
	logLevelVar = "LOG_LEVEL"

	developmentEnv = "DEV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, developmentEnv))
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Moodring")
}

// GetLogLevel returns an explicit zerolog level name, or "" to derive it from the environment.
func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, ""))
}

func (e EnvVars) IsDevelopment() bool {
	return e.GetEnv() == developmentEnv
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, def time.Duration) time.Duration {
	if v := os.Getenv(envVar); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", envVar, v, def)
	}
	return def
}

func getInt(envVar string, def int) int {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer in %s: %s, using default %d", envVar, v, def)
	}
	return def
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
