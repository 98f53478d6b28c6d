package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"breate/internal/domain/models"
	"breate/internal/middleware"
	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// GetProfile godoc
// @Summary Public profile
// @Tags profile
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /api/v1/profile/{username} [get]
func (r *Routers) GetProfile(c echo.Context) error {
	const op = "http.routers.GetProfile"

	user, err := r.Users.Profile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Only full_name, username, bio, preferred_themes, portfolio_links, next_build and affiliations may be set. Other fields are rejected.
// @Tags profile
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param request body dto.ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} response.Message
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Not authorized to edit this profile"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 422 {object} response.ErrorResponse "Unknown or invalid field"
// @Security BearerAuth
// @Router /api/v1/profile/{username} [put]
func (r *Routers) UpdateProfile(c echo.Context) error {
	const op = "http.routers.UpdateProfile"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	req, err := decodeProfileUpdate(c.Request().Body)
	if err != nil {
		return err
	}
	if err := validate(c, &req); err != nil {
		return err
	}

	if _, err := r.Users.UpdateProfile(c.Request().Context(), actor, c.Param("username"), req.ToDomain()); err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Message{Message: "Profile updated successfully"})
}

// decodeProfileUpdate refuses fields outside the allow-list instead of
// silently dropping them, which echo's binder would do.
func decodeProfileUpdate(body io.Reader) (dto.ProfileUpdateRequest, error) {
	var req dto.ProfileUpdateRequest

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return req, echo.NewHTTPError(http.StatusUnprocessableEntity, "Field "+field+" cannot be updated")
		}
		if errors.Is(err, io.EOF) {
			return req, echo.NewHTTPError(http.StatusBadRequest, "Request body is empty")
		}

		return req, echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidBody.Detail)
	}

	return req, nil
}

// Discover godoc
// @Summary Find creators
// @Tags discover
// @Produce json
// @Param name query string false "Substring of the username, case-insensitive"
// @Param archetype_id query int false "Archetype"
// @Param tier_id query int false "Tier"
// @Success 200 {array} models.Creator
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/discover [get]
func (r *Routers) Discover(c echo.Context) error {
	const op = "http.routers.Discover"

	archetypeID, err := queryID(c, "archetype_id")
	if err != nil {
		return err
	}
	tierID, err := queryID(c, "tier_id")
	if err != nil {
		return err
	}

	creators, err := r.Users.Discover(c.Request().Context(), models.UserFilter{
		Name:        c.QueryParam("name"),
		ArchetypeID: archetypeID,
		TierID:      tierID,
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, creators)
}
