package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT LOG REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ContentLogRepository implements profile.ContentLogRepository.
type ContentLogRepository struct {
	conn *Connection
}

// NewContentLogRepository creates a new content log repository.
func NewContentLogRepository(conn *Connection) *ContentLogRepository {
	return &ContentLogRepository{conn: conn}
}

var _ profile.ContentLogRepository = (*ContentLogRepository)(nil)

// Save upserts the entry for (profile, scale, period, role). The row keeps its
// original id; content and timestamp are replaced.
func (r *ContentLogRepository) Save(ctx context.Context, e *profile.ContentLog) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(e.Content)
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO content_logs (id, profile_id, scale, period, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (profile_id, scale, period, role) DO UPDATE SET
			content = EXCLUDED.content,
			created_at = EXCLUDED.created_at
	`, e.ID, e.ProfileID, string(e.Scale), e.Period, string(e.Role), body, e.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrProfileNotFound
		}
		return fmt.Errorf("failed to save content log: %w", err)
	}
	return nil
}

// ListByProfile returns up to limit entries, newest first.
func (r *ContentLogRepository) ListByProfile(ctx context.Context, profileID string, limit int) ([]*profile.ContentLog, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	rows, err := q.Query(ctx, `
		SELECT id, profile_id, scale, period, role, content, created_at
		FROM content_logs
		WHERE profile_id = $1
		ORDER BY created_at DESC, period DESC
		LIMIT $2
	`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list content logs: %w", err)
	}
	defer rows.Close()

	var out []*profile.ContentLog
	for rows.Next() {
		var (
			id, pid, scale, period, r string
			body                      []byte
			createdAt                 time.Time
		)
		if err := rows.Scan(&id, &pid, &scale, &period, &r, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan content log: %w", err)
		}
		entry, err := decodeContentLog(id, pid, scale, period, r, body, createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content logs: %w", err)
	}
	return out, nil
}

func decodeContentLog(id, profileID, scale, period, r string, body []byte, createdAt time.Time) (*profile.ContentLog, error) {
	var c content.Content
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("postgres: content log %s: %w", id, err)
	}
	return &profile.ContentLog{
		ID:        id,
		ProfileID: profileID,
		Scale:     rhythm.Scale(scale),
		Period:    period,
		Role:      role.Role(r),
		Content:   c,
		CreatedAt: createdAt.UTC(),
	}, nil
}
