package services

import (
	"context"
	"errors"
	"time"

	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Invitations expire seven days after they are created. Expiry is evaluated
// at acceptance time; expired rows are never swept.
const invitationTTL = 7 * 24 * time.Hour

var (
	ErrNotAdmin            = errors.New("only admins can manage invitations")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInviteeAffiliated   = errors.New("invitee already owns or belongs to an organization")
	ErrPendingInviteExists = errors.New("a pending invitation already exists for this email")
)

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type InvitationService interface {
	// Invite creates a pending invitation. The inviter must be an admin of
	// the tenant; the invitee must not already own or belong to any
	// organization.
	Invite(ctx context.Context, tenantID, inviterID uuid.UUID, req InviteRequest) (*models.Invitation, error)
	// Accept consumes the token for the calling user and returns the new
	// membership. The invitation must be addressed to the caller's email;
	// unknown, expired, mismatched, and already-used tokens all fail the
	// same way.
	Accept(ctx context.Context, token uuid.UUID, userID uuid.UUID) (*models.Membership, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Invitation, error)
}

type invitationService struct {
	invitations repositories.InvitationRepository
	users       repositories.UserRepository
	resolver    TenantService
}

func NewInvitationService(invitations repositories.InvitationRepository, users repositories.UserRepository, resolver TenantService) InvitationService {
	return &invitationService{invitations: invitations, users: users, resolver: resolver}
}

func (s *invitationService) Invite(ctx context.Context, tenantID, inviterID uuid.UUID, req InviteRequest) (*models.Invitation, error) {
	affiliation, err := s.resolver.Resolve(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	if !affiliation.HasTenant() || affiliation.Tenant.ID != tenantID || !affiliation.IsAdmin() {
		return nil, ErrNotAdmin
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	// If the address already belongs to a registered, affiliated user the
	// invitation could never be accepted, so reject it up front.
	if invitee, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		inviteeAffiliation, err := s.resolver.Resolve(ctx, invitee.ID)
		if err != nil {
			return nil, err
		}
		if inviteeAffiliation.HasTenant() {
			return nil, ErrInviteeAffiliated
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	pending, err := s.invitations.PendingExists(ctx, tenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingInviteExists
	}

	invitation := &models.Invitation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     req.Email,
		Role:      role,
		InvitedBy: inviterID,
		Token:     uuid.New(),
		ExpiresAt: time.Now().Add(invitationTTL),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

func (s *invitationService) Accept(ctx context.Context, token uuid.UUID, userID uuid.UUID) (*models.Membership, error) {
	affiliation, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if affiliation.HasTenant() {
		return nil, ErrAlreadyAffiliated
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.invitations.Accept(ctx, token, userID, user.Email)
}

func (s *invitationService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Invitation, error) {
	return s.invitations.ListByTenant(ctx, tenantID)
}
