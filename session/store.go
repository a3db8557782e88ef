package session

import "context"

// Store persists the session blob. Implementations hold exactly one blob;
// Get returns (nil, nil) when nothing is stored.
type Store interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, blob []byte) error
	Delete(ctx context.Context) error
}
