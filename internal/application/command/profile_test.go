package command

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

type memoryProfiles struct {
	mu   sync.Mutex
	byID map[string]*profile.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{byID: map[string]*profile.Profile{}}
}

func (m *memoryProfiles) Create(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; ok {
		return shared.ErrProfileExists
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memoryProfiles) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrProfileNotFound
}

func (m *memoryProfiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return shared.ErrProfileNotFound
	}
	delete(m.byID, id)
	return nil
}

func seoulParams() birth.NewInfoParams {
	return birth.NewInfoParams{
		Name:      "Kim",
		BirthDate: "1990-01-15",
		BirthTime: "14:30",
		Gender:    "male",
		PlaceName: "Seoul",
	}
}

func TestCreateProfile(t *testing.T) {
	repo := newMemoryProfiles()
	h := NewCreateProfileHandler(repo, 9*60, nil)

	p, err := h.Handle(context.Background(), CreateProfileCommand{Birth: seoulParams(), Role: "office-worker"})
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, role.OfficeWorker, p.Role)
	assert.Equal(t, 540, p.Birth.Place.Offset())
	assert.Contains(t, repo.byID, p.ID)
}

func TestCreateProfile_ExplicitOffsetWins(t *testing.T) {
	h := NewCreateProfileHandler(newMemoryProfiles(), 9*60, nil)
	params := seoulParams()
	off := 8 * 60
	params.UTCOffset = &off

	p, err := h.Handle(context.Background(), CreateProfileCommand{Birth: params})
	require.NoError(t, err)
	assert.Equal(t, 480, p.Birth.Place.Offset())
	assert.Equal(t, role.Neutral, p.Role)
}

func TestCreateProfile_Rejects(t *testing.T) {
	h := NewCreateProfileHandler(newMemoryProfiles(), 9*60, nil)

	bad := seoulParams()
	bad.BirthDate = "1990-13-40"
	_, err := h.Handle(context.Background(), CreateProfileCommand{Birth: bad})
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)

	_, err = h.Handle(context.Background(), CreateProfileCommand{Birth: seoulParams(), Role: "wizard"})
	assert.ErrorIs(t, err, shared.ErrUnsupportedRole)

	// Colliding ids surface the repository error.
	h.newID = func() string { return "7a0c2b6e-0000-4000-8000-000000000001" }
	_, err = h.Handle(context.Background(), CreateProfileCommand{Birth: seoulParams()})
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), CreateProfileCommand{Birth: seoulParams()})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestDeleteProfile(t *testing.T) {
	repo := newMemoryProfiles()
	p, err := NewCreateProfileHandler(repo, 9*60, nil).Handle(context.Background(), CreateProfileCommand{Birth: seoulParams()})
	require.NoError(t, err)

	h := NewDeleteProfileHandler(repo, nil)
	require.NoError(t, h.Handle(context.Background(), p.ID))
	assert.NotContains(t, repo.byID, p.ID)

	assert.True(t, shared.IsNotFound(h.Handle(context.Background(), p.ID)))
	assert.ErrorIs(t, h.Handle(context.Background(), "42"), shared.ErrInvalidFormat)
}
