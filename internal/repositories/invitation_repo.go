package repositories

import (
	"context"
	"errors"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrInvitationUnavailable is returned when an invitation token does not
// exist, is addressed to another email, is already accepted, or has expired.
// Callers surface all of these the same way so a token cannot be probed for
// its state.
var ErrInvitationUnavailable = errors.New("invitation not available")

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	GetByToken(ctx context.Context, token uuid.UUID) (*models.Invitation, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Invitation, error)
	PendingExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
	// Accept consumes the invitation and creates the membership in one
	// transaction. The claim only matches an invitation addressed to email,
	// and row-locks it, so two concurrent accepts of the same token
	// serialize and the loser gets ErrInvitationUnavailable.
	Accept(ctx context.Context, token uuid.UUID, userID uuid.UUID, email string) (*models.Membership, error)
}

type invitationRepo struct {
	db DB
}

func NewInvitationRepo(db DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, tenant_id, email, role, invited_by, token, expires_at, accepted_at, is_accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.TenantID, inv.Email, inv.Role, inv.InvitedBy, inv.Token, inv.ExpiresAt)
	return err
}

func (r *invitationRepo) GetByToken(ctx context.Context, token uuid.UUID) (*models.Invitation, error) {
	inv := &models.Invitation{}
	query := `
		SELECT id, tenant_id, email, role, invited_by, token, expires_at, accepted_at, is_accepted, created_at
		FROM invitations
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.InvitedBy,
		&inv.Token, &inv.ExpiresAt, &inv.AcceptedAt, &inv.IsAccepted, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Invitation, error) {
	query := `
		SELECT id, tenant_id, email, role, invited_by, token, expires_at, accepted_at, is_accepted, created_at
		FROM invitations
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		inv := &models.Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.InvitedBy,
			&inv.Token, &inv.ExpiresAt, &inv.AcceptedAt, &inv.IsAccepted, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepo) PendingExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE tenant_id = $1 AND email = $2 AND is_accepted = false AND expires_at > NOW()
		)
	`
	if err := r.db.QueryRow(ctx, query, tenantID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *invitationRepo) Accept(ctx context.Context, token uuid.UUID, userID uuid.UUID, email string) (*models.Membership, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var tenantID uuid.UUID
	var role string
	claim := `
		UPDATE invitations
		SET is_accepted = true, accepted_at = NOW()
		WHERE token = $1 AND email = $2 AND is_accepted = false AND expires_at > NOW()
		RETURNING tenant_id, role
	`
	if err := tx.QueryRow(ctx, claim, token, email).Scan(&tenantID, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationUnavailable
		}
		return nil, err
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		IsActive: true,
	}
	insert := `
		INSERT INTO memberships (id, user_id, tenant_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, true, NOW())
		RETURNING joined_at
	`
	if err := tx.QueryRow(ctx, insert, membership.ID, membership.UserID, membership.TenantID, membership.Role).Scan(&membership.JoinedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return membership, nil
}
