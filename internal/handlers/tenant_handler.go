package handlers

import (
	"errors"
	"net/http"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/repositories"
	"erpcore/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type TenantHandler struct {
	tenants     services.TenantService
	invitations services.InvitationService
}

func NewTenantHandler(tenants services.TenantService, invitations services.InvitationService) *TenantHandler {
	return &TenantHandler{tenants: tenants, invitations: invitations}
}

// Create creates an organization owned by the caller.
// @Summary Create an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body services.CreateTenantRequest true "organization payload"
// @Success 201 {object} models.Tenant
// @Router /v1/organizations [post]
func (h *TenantHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "authentication required")
	}

	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenants.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyAffiliated) {
			return common.SendClientError(c, common.MsgAlreadyAffiliated)
		}
		return common.SendServerError(c, "failed to create organization")
	}
	return c.JSON(http.StatusCreated, tenant)
}

// List returns the caller's organizations. Unaffiliated users get an empty
// list, not an error; this endpoint is how a fresh account discovers it has
// nothing yet.
// @Summary List my organizations
// @Tags organizations
// @Produce json
// @Success 200 {array} models.Tenant
// @Router /v1/organizations [get]
func (h *TenantHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "authentication required")
	}

	affiliation, err := h.tenants.Resolve(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "could not resolve organization")
	}

	tenants := []*models.Tenant{}
	if affiliation.HasTenant() {
		tenants = append(tenants, affiliation.Tenant)
	}
	return c.JSON(http.StatusOK, tenants)
}

// Current returns the caller's resolved organization.
// @Summary Get current organization
// @Tags organizations
// @Produce json
// @Success 200 {object} models.Tenant
// @Router /v1/organizations/current [get]
func (h *TenantHandler) Current(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	tenant, err := h.tenants.Get(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "organization")
	}
	return c.JSON(http.StatusOK, tenant)
}

// Update edits the caller's organization. Admin only.
func (h *TenantHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	tenant, err := h.tenants.Update(ctx, tenantID, req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "organization")
		}
		return common.SendServerError(c, "failed to update organization")
	}
	return c.JSON(http.StatusOK, tenant)
}

// Members lists the organization's memberships.
func (h *TenantHandler) Members(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	members, err := h.tenants.ListMembers(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "failed to list members")
	}
	if members == nil {
		members = []*models.Membership{}
	}
	return c.JSON(http.StatusOK, members)
}

// Invite creates an invitation to the caller's organization.
// @Summary Invite a user
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body services.InviteRequest true "invitation payload"
// @Success 201 {object} models.Invitation
// @Router /v1/organizations/invitations [post]
func (h *TenantHandler) Invite(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := common.GetUserIDFromContext(ctx)
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	var req services.InviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	invitation, err := h.invitations.Invite(ctx, tenantID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAdmin):
			return common.SendForbiddenError(c, err.Error())
		case errors.Is(err, services.ErrInvalidRole),
			errors.Is(err, services.ErrPendingInviteExists):
			return common.SendClientError(c, err.Error())
		case errors.Is(err, services.ErrInviteeAffiliated):
			return common.SendClientError(c, common.MsgAlreadyAffiliated)
		}
		return common.SendServerError(c, "failed to create invitation")
	}
	return c.JSON(http.StatusCreated, invitation)
}

// Invitations lists the organization's invitations.
func (h *TenantHandler) Invitations(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	invitations, err := h.invitations.List(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "failed to list invitations")
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	return c.JSON(http.StatusOK, invitations)
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

// AcceptInvitation consumes an invitation token for the calling user.
// Unknown, expired, and used tokens all return the same 404.
// @Summary Accept an invitation
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body acceptInvitationRequest true "invitation token"
// @Success 200 {object} models.Membership
// @Router /v1/invitations/accept [post]
func (h *TenantHandler) AcceptInvitation(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "authentication required")
	}

	var req acceptInvitationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	token, err := common.ValidateUUID(req.Token, "token")
	if err != nil {
		return common.SendError(c, http.StatusNotFound, common.MsgInvalidInvitation)
	}

	membership, err := h.invitations.Accept(ctx, token, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyAffiliated):
			return common.SendClientError(c, common.MsgAlreadyAffiliated)
		case errors.Is(err, repositories.ErrInvitationUnavailable):
			return common.SendError(c, http.StatusNotFound, common.MsgInvalidInvitation)
		}
		return common.SendServerError(c, "failed to accept invitation")
	}
	return c.JSON(http.StatusOK, membership)
}

// UploadLogo stores the organization's logo in object storage.
func (h *TenantHandler) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	file, err := c.FormFile("logo")
	if err != nil {
		return common.SendClientError(c, "logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "failed to read upload")
	}
	defer src.Close()

	key, err := h.tenants.UploadLogo(ctx, tenantID, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return common.SendServerError(c, "failed to store logo")
	}
	return c.JSON(http.StatusOK, map[string]string{"logo_key": key})
}

// LogoURL returns a time-limited download link for the organization's logo.
func (h *TenantHandler) LogoURL(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	url, err := h.tenants.LogoURL(ctx, tenantID)
	if err != nil {
		return common.SendNotFoundError(c, "logo")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
