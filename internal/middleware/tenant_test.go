package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"
	"erpcore/internal/tenancy"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTenantService satisfies services.TenantService with a canned Resolve
// result. The other methods are never reached from the middleware.
type stubTenantService struct {
	affiliation tenancy.Affiliation
	err         error
	resolved    bool
}

func (s *stubTenantService) Resolve(ctx context.Context, userID uuid.UUID) (tenancy.Affiliation, error) {
	s.resolved = true
	return s.affiliation, s.err
}

func (s *stubTenantService) Create(ctx context.Context, userID uuid.UUID, req services.CreateTenantRequest) (*models.Tenant, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTenantService) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTenantService) Update(ctx context.Context, tenantID uuid.UUID, req services.UpdateTenantRequest) (*models.Tenant, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTenantService) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]*models.Membership, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTenantService) UploadLogo(ctx context.Context, tenantID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubTenantService) LogoURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return "", errors.New("not implemented")
}

func newTestContext(t *testing.T, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c, rec
}

func withUser(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestRequireTenantReturns404OnAPIPaths(t *testing.T) {
	c, rec := newTestContext(t, "/v1/customers")

	err := RequireTenant(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.MsgNoTenant, body.Error)
}

func TestRequireTenantReturns400OffAPIPaths(t *testing.T) {
	c, rec := newTestContext(t, "/internal/report")

	err := RequireTenant(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.MsgNoTenant, body.Error)
}

func TestRequireTenantPassesWithTenant(t *testing.T) {
	c, rec := newTestContext(t, "/v1/customers")
	ctx := common.WithTenant(c.Request().Context(), uuid.New(), models.RoleAdmin)
	c.SetRequest(c.Request().WithContext(ctx))

	err := RequireTenant(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantResolverSkipsExemptPaths(t *testing.T) {
	svc := &stubTenantService{}
	c, rec := newTestContext(t, "/v1/auth/login")

	err := TenantResolver(svc)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.resolved)
}

func TestTenantResolverRequiresAuthentication(t *testing.T) {
	svc := &stubTenantService{}
	c, rec := newTestContext(t, "/v1/customers")

	err := TenantResolver(svc)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantResolverAttachesTenant(t *testing.T) {
	tenant := &models.Tenant{ID: uuid.New(), IsActive: true}
	svc := &stubTenantService{affiliation: tenancy.Owned(tenant)}
	c, rec := newTestContext(t, "/v1/customers")
	withUser(c, uuid.New())

	var gotTenantID uuid.UUID
	var gotRole string
	handler := func(c echo.Context) error {
		gotTenantID, _ = common.GetTenantIDFromContext(c.Request().Context())
		gotRole, _ = common.GetRoleFromContext(c.Request().Context())
		return okHandler(c)
	}

	err := TenantResolver(svc)(handler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tenant.ID, gotTenantID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestTenantResolverLeavesUnaffiliatedBare(t *testing.T) {
	svc := &stubTenantService{affiliation: tenancy.None()}
	c, rec := newTestContext(t, "/v1/organizations")
	withUser(c, uuid.New())

	var hadTenant bool
	handler := func(c echo.Context) error {
		_, hadTenant = common.GetTenantIDFromContext(c.Request().Context())
		return okHandler(c)
	}

	err := TenantResolver(svc)(handler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, hadTenant)
}

func TestTenantResolverTreatsLookupErrorAsNoTenant(t *testing.T) {
	svc := &stubTenantService{err: errors.New("database down")}
	c, rec := newTestContext(t, "/v1/customers")
	withUser(c, uuid.New())

	// A failed lookup attaches nothing, so the tenant gate rejects the
	// request downstream instead of the resolver erroring out.
	var hadTenant bool
	handler := func(c echo.Context) error {
		_, hadTenant = common.GetTenantIDFromContext(c.Request().Context())
		return okHandler(c)
	}

	err := TenantResolver(svc)(handler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, hadTenant)
}

func TestTenantResolverErrorStillGated(t *testing.T) {
	svc := &stubTenantService{err: errors.New("database down")}
	c, rec := newTestContext(t, "/v1/customers")
	withUser(c, uuid.New())

	err := TenantResolver(svc)(RequireTenant(okHandler))(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.MsgNoTenant, body.Error)
}

func TestRequireAdminRejectsNonAdmins(t *testing.T) {
	c, rec := newTestContext(t, "/v1/organizations/current")
	ctx := common.WithTenant(c.Request().Context(), uuid.New(), models.RoleEmployee)
	c.SetRequest(c.Request().WithContext(ctx))

	err := RequireAdmin(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminPassesAdmins(t *testing.T) {
	c, rec := newTestContext(t, "/v1/organizations/current")
	ctx := common.WithTenant(c.Request().Context(), uuid.New(), models.RoleAdmin)
	c.SetRequest(c.Request().WithContext(ctx))

	err := RequireAdmin(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
