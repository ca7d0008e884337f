package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

var (
	_ profile.Repository = (*ProfileRepository)(nil)
	_ profile.Lister     = (*ProfileRepository)(nil)
)

const profileColumns = `id, name, birth_date, birth_time, gender, place_name,
	latitude, longitude, utc_offset_minutes, role, created_at`

// profileRow mirrors one row of the profiles table.
type profileRow struct {
	ID        string
	Name      string
	BirthDate time.Time
	BirthTime string
	Gender    string
	PlaceName string
	Latitude  *float64
	Longitude *float64
	UTCOffset *int32
	Role      string
	CreatedAt time.Time
}

func newProfileRow(p *profile.Profile) profileRow {
	row := profileRow{
		ID:        p.ID,
		Name:      p.Birth.Name,
		BirthDate: p.Birth.Date,
		BirthTime: p.Birth.Time.String(),
		Gender:    string(p.Birth.Gender),
		PlaceName: p.Birth.Place.Name,
		Latitude:  p.Birth.Place.Latitude,
		Longitude: p.Birth.Place.Longitude,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
	if off := p.Birth.Place.UTCOffsetMinutes; off != nil {
		v := int32(*off)
		row.UTCOffset = &v
	}
	return row
}

func (r profileRow) toDomain() (*profile.Profile, error) {
	hour, minute, err := timeutil.ParseClock(r.BirthTime)
	if err != nil {
		return nil, fmt.Errorf("postgres: stored birth time %q: %w", r.BirthTime, err)
	}
	place := birth.Place{Name: r.PlaceName, Latitude: r.Latitude, Longitude: r.Longitude}
	if r.UTCOffset != nil {
		v := int(*r.UTCOffset)
		place.UTCOffsetMinutes = &v
	}
	return &profile.Profile{
		ID: r.ID,
		Birth: birth.Info{
			Name:   r.Name,
			Date:   timeutil.DateOf(r.BirthDate),
			Time:   birth.Clock{Hour: hour, Minute: minute},
			Gender: birth.Gender(r.Gender),
			Place:  place,
		},
		Role:      role.Role(r.Role),
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

// Create inserts a profile. A duplicate id yields shared.ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	row := newProfileRow(p)
	_, err = q.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		row.ID, row.Name, row.BirthDate, row.BirthTime, row.Gender, row.PlaceName,
		row.Latitude, row.Longitude, row.UTCOffset, row.Role, row.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrProfileExists
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetByID loads a profile. A missing row yields shared.ErrProfileNotFound.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var row profileRow
	err = q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id).Scan(
		&row.ID, &row.Name, &row.BirthDate, &row.BirthTime, &row.Gender, &row.PlaceName,
		&row.Latitude, &row.Longitude, &row.UTCOffset, &row.Role, &row.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return row.toDomain()
}

// Delete removes a profile; its content log goes with it through the cascade.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	tag, err := q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}
	return nil
}

// ListIDs pages through profile ids by key.
func (r *ProfileRepository) ListIDs(ctx context.Context, after string, limit int) ([]string, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var cursor *string
	if after != "" {
		cursor = &after
	}
	rows, err := q.Query(ctx, `
		SELECT id::text FROM profiles
		WHERE $1::uuid IS NULL OR id > $1::uuid
		ORDER BY id
		LIMIT $2
	`, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile ids: %w", err)
	}
	return ids, nil
}
