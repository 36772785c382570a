package middleware

import (
	"log"
	"net/http"
	"strings"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"

	"github.com/labstack/echo/v4"
)

// Paths that never need a tenant: auth, health, docs, and static assets.
var exemptPrefixes = []string{
	"/health",
	"/v1/auth",
	"/swagger",
	"/static/",
	"/media/",
	"/favicon.ico",
}

func exempt(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TenantResolver resolves the authenticated user's affiliation on every
// non-exempt request and attaches the tenant and role to the context.
// Unaffiliated users pass through with no tenant attached; endpoints that
// need one reject via RequireTenant. Lookup errors are logged and treated
// as no tenant, so the gate's rejection is the worst outcome — never a
// silent fallback to some other tenant.
func TenantResolver(tenants services.TenantService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if exempt(c.Path()) || exempt(c.Request().URL.Path) {
				return next(c)
			}

			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return common.SendError(c, http.StatusUnauthorized, "authentication required")
			}

			affiliation, err := tenants.Resolve(ctx, userID)
			if err != nil {
				log.Printf("tenant resolution failed for user %s: %v", userID, err)
				return next(c)
			}

			if affiliation.HasTenant() {
				ctx = common.WithTenant(ctx, affiliation.Tenant.ID, affiliation.Role)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequireTenant gates tenant-scoped endpoints. Unaffiliated callers get 404
// with the standard guidance body on API paths, 400 elsewhere.
func RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := common.GetTenantIDFromContext(c.Request().Context()); !ok {
			status := http.StatusBadRequest
			if strings.HasPrefix(c.Request().URL.Path, "/v1/") {
				status = http.StatusNotFound
			}
			return common.SendError(c, status, common.MsgNoTenant)
		}
		return next(c)
	}
}

// RequireAdmin allows only tenant admins past. Must run after RequireTenant.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := common.GetRoleFromContext(c.Request().Context())
		if !ok || role != models.RoleAdmin {
			return common.SendForbiddenError(c, "admin role required")
		}
		return next(c)
	}
}
