package member

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Datastore handles persistence operations for memberships.
// It performs only database operations and returns raw errors.
type Datastore struct {
	db *sql.DB
}

// NewDatastore creates a new member datastore.
func NewDatastore(db *sql.DB) *Datastore {
	return &Datastore{db: db}
}

const memberColumns = "id, user_id, org_id, status, created_at, updated_at"

// Create inserts a new membership. A duplicate (user, org) pair surfaces
// as a unique-constraint violation.
func (ds *Datastore) Create(ctx context.Context, m *Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO members (id, user_id, org_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		m.ID, m.UserID, m.OrgID, string(m.Status), now, now,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a membership by id. Returns sql.ErrNoRows if not found.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return ds.scanMember(ds.db.QueryRowContext(ctx, query, id))
}

// GetByUserAndOrg retrieves the membership for a (user, org) pair.
func (ds *Datastore) GetByUserAndOrg(ctx context.Context, userID, orgID uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1 AND org_id = $2`
	return ds.scanMember(ds.db.QueryRowContext(ctx, query, userID, orgID))
}

// ListByOrg retrieves an organization's memberships, oldest first.
func (ds *Datastore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE org_id = $1 ORDER BY created_at ASC`
	return ds.queryMembers(ctx, query, orgID)
}

// ListByUser retrieves a user's memberships, oldest first.
func (ds *Datastore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1 ORDER BY created_at ASC`
	return ds.queryMembers(ctx, query, userID)
}

// UpdateStatus changes a membership's status.
func (ds *Datastore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Member, error) {
	query := `
		UPDATE members
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + memberColumns

	return ds.scanMember(ds.db.QueryRowContext(ctx, query, id, string(status)))
}

// Delete removes a membership.
func (ds *Datastore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := ds.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByOrg tallies an organization's memberships grouped by status.
func (ds *Datastore) CountByOrg(ctx context.Context, orgID uuid.UUID) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'spectating'),
			COUNT(*) FILTER (WHERE status = 'playing'),
			COUNT(*) FILTER (WHERE status = 'banned')
		FROM members WHERE org_id = $1`

	counts := &StatusCounts{}
	err := ds.db.QueryRowContext(ctx, query, orgID).Scan(
		&counts.Total, &counts.Spectating, &counts.Playing, &counts.Banned,
	)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (ds *Datastore) scanMember(row *sql.Row) (*Member, error) {
	m := &Member{}
	var status string
	err := row.Scan(&m.ID, &m.UserID, &m.OrgID, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = Status(status)
	return m, nil
}

func (ds *Datastore) queryMembers(ctx context.Context, query string, args ...any) ([]*Member, error) {
	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		var status string
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Status = Status(status)
		members = append(members, m)
	}

	return members, rows.Err()
}
