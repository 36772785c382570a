package services

import (
	"context"
	"testing"
	"time"

	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvitationServiceTestSuite struct {
	suite.Suite
	invitations *MockInvitationRepository
	users       *MockUserRepository
	tenants     *MockTenantRepository
	memberships *MockMembershipRepository
	svc         InvitationService
	ctx         context.Context

	tenantID uuid.UUID
	adminID  uuid.UUID
}

func (s *InvitationServiceTestSuite) SetupTest() {
	s.invitations = new(MockInvitationRepository)
	s.users = new(MockUserRepository)
	s.tenants = new(MockTenantRepository)
	s.memberships = new(MockMembershipRepository)
	resolver := NewTenantService(s.tenants, s.memberships, nil)
	s.svc = NewInvitationService(s.invitations, s.users, resolver)
	s.ctx = context.Background()

	s.tenantID = uuid.New()
	s.adminID = uuid.New()
}

func (s *InvitationServiceTestSuite) ownerResolves() {
	s.tenants.On("GetByAdminUserID", s.ctx, s.adminID).Return(&models.Tenant{
		ID: s.tenantID, IsActive: true, AdminUserID: s.adminID,
	}, nil)
}

func (s *InvitationServiceTestSuite) TestInviteHappyPath() {
	s.ownerResolves()
	s.users.On("GetByEmail", s.ctx, "new@example.com").Return(nil, pgx.ErrNoRows)
	s.invitations.On("PendingExists", s.ctx, s.tenantID, "new@example.com").Return(false, nil)
	s.invitations.On("Create", s.ctx, mock.Anything).Return(nil)

	invitation, err := s.svc.Invite(s.ctx, s.tenantID, s.adminID, InviteRequest{Email: "new@example.com", Role: models.RoleEmployee})
	s.Require().NoError(err)
	s.Equal(s.tenantID, invitation.TenantID)
	s.Equal(models.RoleEmployee, invitation.Role)
	s.NotEqual(uuid.Nil, invitation.Token)
	s.WithinDuration(time.Now().Add(7*24*time.Hour), invitation.ExpiresAt, time.Minute)
}

func (s *InvitationServiceTestSuite) TestInviteRejectsNonAdmin() {
	memberID := uuid.New()
	s.tenants.On("GetByAdminUserID", s.ctx, memberID).Return(nil, pgx.ErrNoRows)
	s.memberships.On("GetByUserID", s.ctx, memberID).Return(&models.Membership{
		ID: uuid.New(), UserID: memberID, TenantID: s.tenantID, Role: models.RoleEmployee, IsActive: true,
	}, nil)
	s.tenants.On("GetByID", s.ctx, s.tenantID).Return(&models.Tenant{ID: s.tenantID, IsActive: true}, nil)

	_, err := s.svc.Invite(s.ctx, s.tenantID, memberID, InviteRequest{Email: "new@example.com"})
	s.ErrorIs(err, ErrNotAdmin)
}

func (s *InvitationServiceTestSuite) TestInviteRejectsInvalidRole() {
	s.ownerResolves()

	_, err := s.svc.Invite(s.ctx, s.tenantID, s.adminID, InviteRequest{Email: "new@example.com", Role: "superuser"})
	s.ErrorIs(err, ErrInvalidRole)
}

func (s *InvitationServiceTestSuite) TestInviteRejectsAffiliatedInvitee() {
	s.ownerResolves()
	inviteeID := uuid.New()
	s.users.On("GetByEmail", s.ctx, "taken@example.com").Return(&models.User{ID: inviteeID, Email: "taken@example.com", IsActive: true}, nil)
	s.tenants.On("GetByAdminUserID", s.ctx, inviteeID).Return(&models.Tenant{
		ID: uuid.New(), IsActive: true, AdminUserID: inviteeID,
	}, nil)

	_, err := s.svc.Invite(s.ctx, s.tenantID, s.adminID, InviteRequest{Email: "taken@example.com"})
	s.ErrorIs(err, ErrInviteeAffiliated)
}

func (s *InvitationServiceTestSuite) TestInviteRejectsDuplicatePending() {
	s.ownerResolves()
	s.users.On("GetByEmail", s.ctx, "new@example.com").Return(nil, pgx.ErrNoRows)
	s.invitations.On("PendingExists", s.ctx, s.tenantID, "new@example.com").Return(true, nil)

	_, err := s.svc.Invite(s.ctx, s.tenantID, s.adminID, InviteRequest{Email: "new@example.com"})
	s.ErrorIs(err, ErrPendingInviteExists)
}

func (s *InvitationServiceTestSuite) unaffiliated(userID uuid.UUID, email string) {
	s.tenants.On("GetByAdminUserID", s.ctx, userID).Return(nil, pgx.ErrNoRows)
	s.memberships.On("GetByUserID", s.ctx, userID).Return(nil, pgx.ErrNoRows)
	s.users.On("GetByID", s.ctx, userID).Return(&models.User{ID: userID, Email: email, IsActive: true}, nil)
}

func (s *InvitationServiceTestSuite) TestAcceptHappyPath() {
	userID := uuid.New()
	token := uuid.New()
	s.unaffiliated(userID, "alice@example.com")
	s.invitations.On("Accept", s.ctx, token, userID, "alice@example.com").Return(&models.Membership{
		ID: uuid.New(), UserID: userID, TenantID: s.tenantID, Role: models.RoleEmployee, IsActive: true,
	}, nil)

	membership, err := s.svc.Accept(s.ctx, token, userID)
	s.Require().NoError(err)
	s.Equal(s.tenantID, membership.TenantID)
}

func (s *InvitationServiceTestSuite) TestAcceptClaimsWithCallersEmail() {
	// A leaked token addressed to someone else must not admit the caller:
	// the claim carries the caller's own email, never the token's.
	userID := uuid.New()
	token := uuid.New()
	s.unaffiliated(userID, "mallory@example.com")
	s.invitations.On("Accept", s.ctx, token, userID, "mallory@example.com").Return(nil, repositories.ErrInvitationUnavailable)

	_, err := s.svc.Accept(s.ctx, token, userID)
	s.ErrorIs(err, repositories.ErrInvitationUnavailable)
	s.invitations.AssertCalled(s.T(), "Accept", s.ctx, token, userID, "mallory@example.com")
}

func (s *InvitationServiceTestSuite) TestAcceptRejectsAffiliatedUser() {
	userID := uuid.New()
	s.tenants.On("GetByAdminUserID", s.ctx, userID).Return(&models.Tenant{
		ID: uuid.New(), IsActive: true, AdminUserID: userID,
	}, nil)

	_, err := s.svc.Accept(s.ctx, uuid.New(), userID)
	s.ErrorIs(err, ErrAlreadyAffiliated)
	s.invitations.AssertNotCalled(s.T(), "Accept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvitationServiceTestSuite) TestAcceptPropagatesUnavailableToken() {
	userID := uuid.New()
	token := uuid.New()
	s.unaffiliated(userID, "new@example.com")
	s.invitations.On("Accept", s.ctx, token, userID, "new@example.com").Return(nil, repositories.ErrInvitationUnavailable)

	_, err := s.svc.Accept(s.ctx, token, userID)
	s.ErrorIs(err, repositories.ErrInvitationUnavailable)
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}
