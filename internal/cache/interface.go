package cache

import (
	"context"

	"github.com/riskids/riskids-betest/internal/domain"
)

// UserCache is a best-effort secondary index over user snapshots, keyed by
// account number and registration number. It is never authoritative: every
// operation degrades to a miss or a silent no-op when the backing store is
// unreachable, and no error ever crosses this boundary.
type UserCache interface {
	// GetByAccountNumber returns a cached snapshot and true on a hit.
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, bool)

	// GetByRegistrationNumber returns a cached snapshot and true on a hit.
	GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, bool)

	// CacheUser writes the snapshot under both alternate keys. Partial
	// success is accepted; repeating the call is idempotent apart from the
	// refreshed TTL.
	CacheUser(ctx context.Context, user *domain.User)

	// ClearUserCache deletes both alternate-key entries for the snapshot.
	// Clearing an absent entry is a no-op.
	ClearUserCache(ctx context.Context, user *domain.User)

	Close() error
}
