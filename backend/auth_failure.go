package backend

import (
	"fmt"
)

// Stage names the backend call that failed.
type Stage string

const (
	StageExchange Stage = "exchange"
	StageRefresh  Stage = "refresh"
)

// AuthFailure is returned by the exchange and refresh calls. Status is nil
// when no HTTP response was received; Body then holds the transport error.
type AuthFailure struct {
	Stage  Stage
	Status *int
	Body   string
}

func (f *AuthFailure) Error() string {
	if f.Status == nil {
		return fmt.Sprintf("backend %s failed: %s", f.Stage, f.Body)
	}
	return fmt.Sprintf("backend %s failed: %d - %s", f.Stage, *f.Status, f.Body)
}
