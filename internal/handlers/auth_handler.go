package handlers

import (
	"errors"
	"net/http"

	"erpcore/internal/common"
	"erpcore/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup registers a new user account.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.SignupRequest true "signup payload"
// @Success 201 {object} services.AuthResult
// @Router /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if len(req.Password) < 8 {
		return common.SendClientError(c, "password must be at least 8 characters")
	}

	result, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "signup failed")
	}
	return c.JSON(http.StatusCreated, result)
}

// Login exchanges credentials for a JWT and an API token.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "login payload"
// @Success 200 {object} services.AuthResult
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	result, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrUserInactive) {
			return common.SendError(c, http.StatusUnauthorized, "invalid email or password")
		}
		return common.SendServerError(c, "login failed")
	}
	return c.JSON(http.StatusOK, result)
}
