package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileHandler loads a stored profile.
type GetProfileHandler struct {
	profiles profile.Repository
}

// NewGetProfileHandler creates the handler.
func NewGetProfileHandler(profiles profile.Repository) *GetProfileHandler {
	return &GetProfileHandler{profiles: profiles}
}

// Handle returns the profile with the given id.
func (h *GetProfileHandler) Handle(ctx context.Context, id string) (*profile.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.WrapError("query", "GetProfile", shared.ErrInvalidFormat, "profile id is not a uuid", err)
	}
	return h.profiles.GetByID(ctx, id)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE RHYTHM
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileRhythmQuery asks for a stored profile's daily content.
type GetProfileRhythmQuery struct {
	ProfileID string
	Date      time.Time

	// Role overrides the profile's default role when set.
	Role *role.Role
}

// GetProfileRhythmHandler runs the daily pipeline for a stored profile and
// records the delivered document.
type GetProfileRhythmHandler struct {
	profiles profile.Repository
	logs     profile.ContentLogRepository
	daily    *GetDailyRhythmHandler
	features FeatureGate
	log      *logger.Logger
	now      func() time.Time
}

// NewGetProfileRhythmHandler creates the handler. logs may be nil.
func NewGetProfileRhythmHandler(
	profiles profile.Repository,
	logs profile.ContentLogRepository,
	daily *GetDailyRhythmHandler,
	features FeatureGate,
	log *logger.Logger,
) *GetProfileRhythmHandler {
	if features == nil {
		features = allowAll{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &GetProfileRhythmHandler{
		profiles: profiles,
		logs:     logs,
		daily:    daily,
		features: features,
		log:      log.With(logger.Component("profile_rhythm")),
		now:      time.Now,
	}
}

// Handle loads the profile, runs the pipeline and saves a content log entry.
// A failed log write is reported but does not fail the request.
func (h *GetProfileRhythmHandler) Handle(ctx context.Context, q GetProfileRhythmQuery) (*Document, error) {
	if _, err := uuid.Parse(q.ProfileID); err != nil {
		return nil, shared.WrapError("query", "GetProfileRhythm", shared.ErrInvalidFormat, "profile id is not a uuid", err)
	}
	p, err := h.profiles.GetByID(ctx, q.ProfileID)
	if err != nil {
		return nil, err
	}

	r := p.Role
	if q.Role != nil {
		r = *q.Role
	}
	doc, err := h.daily.Handle(ctx, GetDailyRhythmQuery{Birth: p.Birth, Date: q.Date, Role: r, ProfileID: p.ID})
	if err != nil {
		return nil, err
	}

	if h.logs != nil && h.features.IsEnabled(FeatureContentLog, p.ID) {
		entry, err := profile.NewContentLog(uuid.NewString(), p.ID, doc.Role, doc.Content, h.now())
		if err == nil {
			err = h.logs.Save(ctx, entry)
		}
		if err != nil {
			h.log.Warn("content log write failed", logger.ProfileID(p.ID), logger.Period(doc.Period), logger.Err(err))
		}
	}
	return doc, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST CONTENT LOG
// ══════════════════════════════════════════════════════════════════════════════

// DefaultContentLogLimit caps a content log listing when no limit is given.
const DefaultContentLogLimit = 30

// ListContentLogHandler lists a profile's delivered documents.
type ListContentLogHandler struct {
	profiles profile.Repository
	logs     profile.ContentLogRepository
}

// NewListContentLogHandler creates the handler.
func NewListContentLogHandler(profiles profile.Repository, logs profile.ContentLogRepository) *ListContentLogHandler {
	return &ListContentLogHandler{profiles: profiles, logs: logs}
}

// Handle returns up to limit entries, newest first.
func (h *ListContentLogHandler) Handle(ctx context.Context, profileID string, limit int) ([]*profile.ContentLog, error) {
	if _, err := uuid.Parse(profileID); err != nil {
		return nil, shared.WrapError("query", "ListContentLog", shared.ErrInvalidFormat, "profile id is not a uuid", err)
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultContentLogLimit
	}
	if _, err := h.profiles.GetByID(ctx, profileID); err != nil {
		return nil, err
	}
	return h.logs.ListByProfile(ctx, profileID, limit)
}
