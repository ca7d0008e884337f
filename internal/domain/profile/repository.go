package profile

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository stores profiles.
type Repository interface {
	// Create stores a new profile.
	// Returns shared.ErrProfileExists if the id is taken.
	Create(ctx context.Context, p *Profile) error

	// GetByID returns a profile.
	// Returns shared.ErrProfileNotFound if there is none.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// Delete removes a profile and its content log.
	// Returns shared.ErrProfileNotFound if there is none.
	Delete(ctx context.Context, id string) error
}

// Lister pages through every stored profile id in ascending order.
type Lister interface {
	// ListIDs returns up to limit ids greater than after; "" starts from the beginning.
	ListIDs(ctx context.Context, after string, limit int) ([]string, error)
}

// ContentLogRepository stores delivered documents.
type ContentLogRepository interface {
	// Save inserts or replaces the entry for (profile, scale, period, role).
	Save(ctx context.Context, entry *ContentLog) error

	// ListByProfile returns a profile's entries, newest first.
	ListByProfile(ctx context.Context, profileID string, limit int) ([]*ContentLog, error)
}
