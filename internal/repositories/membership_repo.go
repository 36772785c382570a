package repositories

import (
	"context"

	"erpcore/internal/models"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Membership, error)
	Deactivate(ctx context.Context, tenantID, membershipID uuid.UUID) error
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepo(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (id, user_id, tenant_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.UserID, m.TenantID, m.Role, m.IsActive)
	return err
}

// GetByUserID returns the user's membership. A user belongs to at most one
// tenant, enforced by a unique constraint on user_id.
func (r *membershipRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, user_id, tenant_id, role, is_active, joined_at
		FROM memberships
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.IsActive, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT id, user_id, tenant_id, role, is_active, joined_at
		FROM memberships
		WHERE tenant_id = $1
		ORDER BY joined_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.IsActive, &m.JoinedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepo) Deactivate(ctx context.Context, tenantID, membershipID uuid.UUID) error {
	query := `UPDATE memberships SET is_active = false WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, membershipID)
	return err
}
