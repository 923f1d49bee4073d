package store

import (
	"context"
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

// Store defines the persistence interface for per-account email
// collections. One collection is saved per account address and loaded
// eagerly into the in-memory cache at account activation.
type Store interface {
	// SaveCollection replaces the persisted collection for an account.
	SaveCollection(ctx context.Context, account string, emails []model.Email, lastRefresh time.Time) error

	// LoadCollection returns the persisted collection and its last
	// refresh checkpoint. An unknown account yields an empty
	// collection and the zero time, not an error.
	LoadCollection(ctx context.Context, account string) ([]model.Email, time.Time, error)

	// DeleteCollection removes an account's persisted collection.
	DeleteCollection(ctx context.Context, account string) error

	// Accounts lists the accounts with persisted collections.
	Accounts(ctx context.Context) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
