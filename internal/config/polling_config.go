package config

import "time"

type Polling struct{}

var _ PollingConfig = Polling{}

func (Polling) GetPollInterval() time.Duration {
	return getDuration("POLL_INTERVAL", 30*time.Second)
}
