package state

import "context"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	LoadSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	LoadQueue(ctx context.Context) (*Session, error)
	SaveQueue(ctx context.Context, s Session) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
