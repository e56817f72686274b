package middleware

import (
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
)

// RequireAuth returns a middleware that verifies Firebase bearer tokens and
// loads the matching local user record into the request context.
func RequireAuth(authClient *auth.Client, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication is not configured")
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			decoded, err := authClient.VerifyIDToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set("userUID", decoded.UID)

			email, _ := decoded.Claims["email"].(string)
			if email != "" {
				var user models.User
				err := db.WithContext(c.Request().Context()).
					Where("email = ?", email).First(&user).Error
				if err == nil {
					c.Set("currentUser", &user)
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}

			return next(c)
		}
	}
}

// RequireRole restricts a route to the given roles. It must run after
// RequireAuth.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no account found for this token")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you don't have permission to access this resource")
		}
	}
}

// CurrentUser returns the authenticated user loaded by RequireAuth, or nil.
func CurrentUser(c echo.Context) *models.User {
	if val := c.Get("currentUser"); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}
