package middleware

import (
	"context"
	"net/http"
	"strings"

	"erpcore/internal/common"
	"erpcore/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWT returns the bearer-token middleware. Requests carrying
// "Authorization: Token <key>" instead of a bearer JWT are handed to the
// API-token path, so both credential styles land on the same context shape.
func JWT(secret string, auth services.AuthService) echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		SigningKey:     []byte(secret),
		SuccessHandler: attachUserFromClaims,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		jwtNext := jwtMiddleware(next)
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Token ") {
				return handleAPIToken(c, next, auth, strings.TrimPrefix(header, "Token "))
			}
			return jwtNext(c)
		}
	}
}

func attachUserFromClaims(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	idStr, ok := claims["user_id"].(string)
	if !ok {
		return
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return
	}
	attachUser(c, userID)
}

func handleAPIToken(c echo.Context, next echo.HandlerFunc, auth services.AuthService, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return common.SendError(c, http.StatusUnauthorized, "invalid token")
	}
	user, err := auth.UserForAPIToken(c.Request().Context(), key)
	if err != nil {
		return common.SendError(c, http.StatusUnauthorized, "invalid token")
	}
	attachUser(c, user.ID)
	return next(c)
}

func attachUser(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}
