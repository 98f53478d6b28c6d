package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"breate/internal/domain/models"
	"breate/internal/metrics"
	"breate/internal/middleware"
	"breate/internal/services/auth"
	tokensvc "breate/internal/services/token_service"
	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/request"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const refreshCookie = "refresh_token"

// Register godoc
// @Summary Register a new account
// @Description A missing username defaults to the part of the email before '@'.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Credentials"
// @Success 200 {object} dto.RegisterResponse
// @Failure 400 {object} response.ErrorResponse "Email already registered"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /api/v1/auth/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	var req request.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := r.Auth.RegisterNewUser(c.Request().Context(), auth.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Username:       req.Username,
		DeriveUsername: true,
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.RegisterResponse{
		Message: "User registered successfully",
		User: dto.RegisteredUser{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
		},
	})
}

// Signup godoc
// @Summary Register an account with archetype and tier
// @Tags users
// @Accept json
// @Produce json
// @Param request body request.SignupRequest true "Account"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} response.ErrorResponse "Email already registered"
// @Failure 422 {object} response.ErrorResponse "Validation failed or unknown archetype/tier"
// @Router /api/v1/users/signup [post]
func (r *Routers) Signup(c echo.Context) error {
	const op = "http.routers.Signup"

	var req request.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := r.Auth.RegisterNewUser(c.Request().Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		ArchetypeID: &req.ArchetypeID,
		TierID:      &req.TierID,
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Login godoc
// @Summary Log in
// @Description Accepts JSON {email, password} or the OAuth2 password form (username=email). Sets the refresh_token cookie.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} response.ErrorResponse "Invalid email or password"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /api/v1/auth/login [post]
// @Router /api/v1/users/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	var req request.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tokens, err := r.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.AuthFailuresTotal.WithLabelValues("login").Inc()
		}

		return r.fail(c, op, err)
	}

	c.SetCookie(r.newRefreshCookie(tokens.RefreshToken))

	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    models.BearerTokenType,
	})
}

// Refresh godoc
// @Summary Issue a new access token
// @Description Reads the refresh token from the refresh_token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} response.ErrorResponse "Missing, invalid, expired or revoked refresh token"
// @Router /api/v1/auth/refresh [post]
// @Router /api/v1/users/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	cookie, err := c.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		return refreshRejected("missing", "Refresh token missing")
	}

	access, err := r.Auth.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, tokensvc.ErrTokenExpired):
			return refreshRejected("expired", "Refresh token has expired")
		case errors.Is(err, auth.ErrWrongTokenType):
			return refreshRejected("wrong_type", "Invalid refresh token type")
		case errors.Is(err, auth.ErrInvalidPayload):
			return refreshRejected("payload", "Invalid token payload")
		case errors.Is(err, auth.ErrTokenRevoked):
			return refreshRejected("revoked", "Refresh token has been revoked")
		case errors.Is(err, auth.ErrUnauthenticated):
			return refreshRejected("invalid", "Invalid refresh token")
		}

		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: access,
		TokenType:   models.BearerTokenType,
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the refresh_token cookie and revokes the token when a revocation store is configured.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Message
// @Router /api/v1/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	if cookie, err := c.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		if err := r.Auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			return r.fail(c, op, err)
		}
	}

	c.SetCookie(r.expiredRefreshCookie())

	return c.JSON(http.StatusOK, response.Message{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /api/v1/users/me [get]
func (r *Routers) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// ChangePassword godoc
// @Summary Change the password of the current user
// @Tags users
// @Accept json
// @Produce json
// @Param request body request.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse "Current password is incorrect"
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /api/v1/users/me/password [put]
func (r *Routers) ChangePassword(c echo.Context) error {
	const op = "http.routers.ChangePassword"

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req request.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := r.Auth.ChangePassword(c.Request().Context(), user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
		}

		return r.fail(c, op, err)
	}

	r.log.Info("password changed", slog.String("op", op), slog.Int64("user_id", user.ID))

	return c.JSON(http.StatusOK, response.Message{Message: "Password updated successfully"})
}

func refreshRejected(reason, detail string) error {
	metrics.AuthFailuresTotal.WithLabelValues("refresh_" + reason).Inc()

	return echo.NewHTTPError(http.StatusUnauthorized, detail)
}

func (r *Routers) newRefreshCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(r.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   r.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (r *Routers) expiredRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
