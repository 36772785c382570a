package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invitationClaim = `
		UPDATE invitations
		SET is_accepted = true, accepted_at = NOW()
		WHERE token = $1 AND email = $2 AND is_accepted = false AND expires_at > NOW()
		RETURNING tenant_id, role
	`

const membershipInsert = `
		INSERT INTO memberships (id, user_id, tenant_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, true, NOW())
		RETURNING joined_at
	`

func TestInvitationAcceptClaimsByTokenAndEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	token := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()
	repo := NewInvitationRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(invitationClaim)).
		WithArgs(token, "alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"tenant_id", "role"}).AddRow(tenantID, models.RoleEmployee))
	mock.ExpectQuery(regexp.QuoteMeta(membershipInsert)).
		WithArgs(pgxmock.AnyArg(), userID, tenantID, models.RoleEmployee).
		WillReturnRows(pgxmock.NewRows([]string{"joined_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	membership, err := repo.Accept(context.Background(), token, userID, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, tenantID, membership.TenantID)
	assert.Equal(t, userID, membership.UserID)
	assert.Equal(t, models.RoleEmployee, membership.Role)
	assert.True(t, membership.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationAcceptRejectsMismatchedEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	token := uuid.New()
	repo := NewInvitationRepo(mock)

	// The claim matches nothing when the caller's email differs from the
	// invitation's, so a leaked token is useless to anyone else.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(invitationClaim)).
		WithArgs(token, "mallory@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"tenant_id", "role"}))
	mock.ExpectRollback()

	_, err = repo.Accept(context.Background(), token, uuid.New(), "mallory@example.com")
	assert.ErrorIs(t, err, ErrInvitationUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}
