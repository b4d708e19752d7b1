package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain errors returned by the Manager.
var (
	ErrNotFound        = errors.New("membership not found")
	ErrInvalidStatus   = errors.New("invalid member status")
	ErrAlreadyMember   = errors.New("user is already a member of this organization")
	ErrRelationMissing = errors.New("user or organization does not exist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Manager handles business logic for memberships.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new member manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// Create adds a user to an organization. The status defaults to spectating.
func (m *Manager) Create(ctx context.Context, mem *Member) error {
	if mem.Status == "" {
		mem.Status = StatusSpectating
	}
	if !mem.Status.Valid() {
		return ErrInvalidStatus
	}

	if err := m.ds.Create(ctx, mem); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return ErrAlreadyMember
			case pgForeignKeyViolation:
				return ErrRelationMissing
			}
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// GetByID retrieves a membership by id.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	mem, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return mem, nil
}

// GetByUserAndOrg retrieves the membership for a (user, org) pair.
func (m *Manager) GetByUserAndOrg(ctx context.Context, userID, orgID uuid.UUID) (*Member, error) {
	mem, err := m.ds.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return mem, nil
}

// ListByOrg retrieves all memberships of an organization.
func (m *Manager) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*Member, error) {
	members, err := m.ds.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ListByUser retrieves all memberships held by a user.
func (m *Manager) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Member, error) {
	members, err := m.ds.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return members, nil
}

// UpdateStatus changes a membership's status.
func (m *Manager) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Member, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	mem, err := m.ds.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}
	return mem, nil
}

// Delete removes a membership.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByOrg tallies an organization's memberships by status.
func (m *Manager) CountByOrg(ctx context.Context, orgID uuid.UUID) (*StatusCounts, error) {
	counts, err := m.ds.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	return counts, nil
}
