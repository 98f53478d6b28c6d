package http

import (
	"net/http"
	"strconv"

	"breate/internal/middleware"
	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// CreateCollab godoc
// @Summary Propose a collaboration
// @Description Creates a pending link between two users. The caller must be one of them.
// @Tags collabcircle
// @Accept json
// @Produce json
// @Param request body dto.CollabCreateRequest true "Link"
// @Success 200 {object} dto.CollabCreateResponse
// @Failure 400 {object} response.ErrorResponse "Collaboration already exists"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "One or both users not found"
// @Security BearerAuth
// @Router /api/v1/collabcircle/create [post]
func (r *Routers) CreateCollab(c echo.Context) error {
	const op = "http.routers.CreateCollab"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req dto.CollabCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	link, err := r.Collab.Create(c.Request().Context(), actor, req.UserAUsername, req.UserBUsername, req.ProjectName)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.CollabCreateResponse{
		Message: "Collaboration link created successfully.",
		LinkID:  strconv.FormatInt(link.ID, 10),
	})
}

// VerifyCollab godoc
// @Summary Verify a collaboration
// @Tags collabcircle
// @Produce json
// @Param user_a_username query string true "One party"
// @Param user_b_username query string true "Other party"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Collaboration not found"
// @Security BearerAuth
// @Router /api/v1/collabcircle/verify [post]
func (r *Routers) VerifyCollab(c echo.Context) error {
	const op = "http.routers.VerifyCollab"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	userA, userB := c.QueryParam("user_a_username"), c.QueryParam("user_b_username")
	if userA == "" || userB == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "user_a_username and user_b_username are required")
	}

	if _, err := r.Collab.Verify(c.Request().Context(), actor, userA, userB); err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Message{Message: "Collaboration verified successfully."})
}

// CollabCircle godoc
// @Summary Collaborations of a user
// @Tags collabcircle
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.CollabCircleResponse
// @Router /api/v1/collabcircle/{username} [get]
func (r *Routers) CollabCircle(c echo.Context) error {
	const op = "http.routers.CollabCircle"

	entries, err := r.Collab.Circle(c.Request().Context(), c.Param("username"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.CollabCircleResponse{CollabCircle: entries})
}
