package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"breate/internal/domain/models"
	"breate/internal/lib/logger/sl"
	"breate/internal/metrics"
	"breate/internal/services/auth"
	tokensvc "breate/internal/services/token_service"

	"github.com/labstack/echo/v4"
)

const userContextKey = "breate.user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// Authenticate resolves the bearer token of every request to a stored user.
// Requests without a usable token never reach next.
func Authenticate(log *slog.Logger, authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, "missing", "Not authenticated")
			}

			user, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrUserNotFound):
					return echo.NewHTTPError(http.StatusNotFound, "User not found")
				case errors.Is(err, tokensvc.ErrTokenExpired):
					return unauthorized(c, "expired", "Access token has expired")
				case errors.Is(err, auth.ErrWrongTokenType):
					return unauthorized(c, "wrong_type", "Invalid access token type")
				case errors.Is(err, auth.ErrInvalidPayload):
					return unauthorized(c, "payload", "Invalid token payload")
				case errors.Is(err, auth.ErrUnauthenticated):
					return unauthorized(c, "invalid", "Invalid access token")
				}

				log.Error("failed to authenticate request",
					slog.String("op", "middleware.Authenticate"),
					sl.Err(err),
				)

				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}

			c.Set(userContextKey, user)

			return next(c)
		}
	}
}

// BearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (models.User, bool) {
	user, ok := c.Get(userContextKey).(models.User)

	return user, ok
}

func unauthorized(c echo.Context, reason, detail string) error {
	metrics.AuthFailuresTotal.WithLabelValues("access_" + reason).Inc()
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")

	return echo.NewHTTPError(http.StatusUnauthorized, detail)
}
