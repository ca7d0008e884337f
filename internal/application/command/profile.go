// Package command contains write operations: storing and removing profiles.
package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PROFILE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateProfileCommand carries a raw birth record and an optional default role.
type CreateProfileCommand struct {
	Birth birth.NewInfoParams
	Role  string
}

// CreateProfileHandler validates and stores profiles.
type CreateProfileHandler struct {
	profiles      profile.Repository
	defaultOffset int
	log           *logger.Logger
	newID         func() string
	now           func() time.Time
}

// NewCreateProfileHandler creates the handler. defaultOffset is the civil UTC
// offset in minutes applied when the command carries none.
func NewCreateProfileHandler(profiles profile.Repository, defaultOffset int, log *logger.Logger) *CreateProfileHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CreateProfileHandler{
		profiles:      profiles,
		defaultOffset: defaultOffset,
		log:           log.With(logger.Component("create_profile")),
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Handle stores a new profile under a fresh UUID.
func (h *CreateProfileHandler) Handle(ctx context.Context, cmd CreateProfileCommand) (*profile.Profile, error) {
	params := cmd.Birth
	if params.UTCOffset == nil {
		off := h.defaultOffset
		params.UTCOffset = &off
	}
	info, err := birth.NewInfo(params)
	if err != nil {
		return nil, err
	}
	r, err := role.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}

	p, err := profile.NewProfile(h.newID(), info, r, h.now())
	if err != nil {
		return nil, err
	}
	if err := h.profiles.Create(ctx, p); err != nil {
		return nil, err
	}

	h.log.Info("profile created", logger.ProfileID(p.ID), logger.Role(r.String()))
	return p, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE PROFILE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteProfileHandler removes profiles and their content logs.
type DeleteProfileHandler struct {
	profiles profile.Repository
	log      *logger.Logger
}

// NewDeleteProfileHandler creates the handler.
func NewDeleteProfileHandler(profiles profile.Repository, log *logger.Logger) *DeleteProfileHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DeleteProfileHandler{profiles: profiles, log: log.With(logger.Component("delete_profile"))}
}

// Handle deletes the profile with the given id.
func (h *DeleteProfileHandler) Handle(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.WrapError("command", "DeleteProfile", shared.ErrInvalidFormat, "profile id is not a uuid", err)
	}
	if err := h.profiles.Delete(ctx, id); err != nil {
		return err
	}
	h.log.Info("profile deleted", logger.ProfileID(id))
	return nil
}
