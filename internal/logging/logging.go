package logging

import (
	"io"
	"os"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Development builds get a
// console writer at debug level so background fetch failures are visible;
// other environments get JSON at info level and those failures stay quiet.
func Setup(cfg config.EnvConfig) zerolog.Logger {
	return setup(cfg, os.Stderr)
}

func setup(cfg config.EnvConfig, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	if name := cfg.GetLogLevel(); name != "" {
		if parsed, err := zerolog.ParseLevel(name); err == nil {
			level = parsed
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
	log.Logger = logger
	return logger
}
