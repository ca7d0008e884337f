// Package profile holds stored birth records and the log of documents
// assembled for them. Identifiers are generated by the caller.
package profile

import (
	"strings"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile is a named birth record with a default audience role.
type Profile struct {
	ID        string     `json:"id"`
	Birth     birth.Info `json:"birth"`
	Role      role.Role  `json:"role,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewProfile validates and builds a profile.
func NewProfile(id string, b birth.Info, r role.Role, now time.Time) (*Profile, error) {
	const op = "NewProfile"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError("profile", op, shared.ErrEmptyValue, "profile id is required")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !r.IsValid() {
		return nil, shared.Validationf("profile", op, shared.ErrUnsupportedRole, "unsupported role %q", string(r))
	}
	return &Profile{ID: id, Birth: b, Role: r, CreatedAt: now.UTC()}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT LOG
// ══════════════════════════════════════════════════════════════════════════════

// ContentLog is one document delivered to a profile. Entries are unique per
// (profile, scale, period, role); a later write replaces the earlier one.
type ContentLog struct {
	ID        string          `json:"id"`
	ProfileID string          `json:"profile_id"`
	Scale     rhythm.Scale    `json:"scale"`
	Period    string          `json:"period"`
	Role      role.Role       `json:"role,omitempty"`
	Content   content.Content `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewContentLog builds a log entry from an assembled or translated document.
func NewContentLog(id, profileID string, r role.Role, c content.Content, now time.Time) (*ContentLog, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(profileID) == "" {
		return nil, shared.NewDomainError("profile", "NewContentLog", shared.ErrEmptyValue, "log id and profile id are required")
	}
	return &ContentLog{
		ID:        id,
		ProfileID: profileID,
		Scale:     c.Scale,
		Period:    c.Period,
		Role:      r,
		Content:   c,
		CreatedAt: now.UTC(),
	}, nil
}
