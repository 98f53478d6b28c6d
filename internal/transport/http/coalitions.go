package http

import (
	"context"
	"fmt"
	"net/http"

	"breate/internal/domain/models"
	"breate/internal/middleware"
	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListCoalitions godoc
// @Summary List coalitions
// @Tags coalitions
// @Produce json
// @Param search query string false "Substring of name, focus or location"
// @Param region query string false "Exact location; All disables the filter"
// @Success 200 {array} models.Coalition
// @Router /api/v1/coalitions [get]
func (r *Routers) ListCoalitions(c echo.Context) error {
	const op = "http.routers.ListCoalitions"

	list, err := r.Coalitions.List(c.Request().Context(), models.CoalitionFilter{
		Search: c.QueryParam("search"),
		Region: c.QueryParam("region"),
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, list)
}

// GetCoalition godoc
// @Summary Get a coalition with its members
// @Tags coalitions
// @Produce json
// @Param id path int true "Coalition ID"
// @Success 200 {object} models.Coalition
// @Failure 404 {object} response.ErrorResponse "Coalition not found"
// @Router /api/v1/coalitions/{id} [get]
func (r *Routers) GetCoalition(c echo.Context) error {
	const op = "http.routers.GetCoalition"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	coalition, err := r.Coalitions.Get(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, coalition)
}

// CreateCoalition godoc
// @Summary Create a coalition
// @Tags coalitions
// @Accept json
// @Produce json
// @Param request body dto.CoalitionRequest true "Coalition"
// @Success 201 {object} models.Coalition
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/coalitions [post]
func (r *Routers) CreateCoalition(c echo.Context) error {
	const op = "http.routers.CreateCoalition"

	var req dto.CoalitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	coalition, err := r.Coalitions.Create(c.Request().Context(), req.ToDomain())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, coalition)
}

// DeleteCoalition godoc
// @Summary Delete a coalition
// @Tags coalitions
// @Produce json
// @Param id path int true "Coalition ID"
// @Success 200 {object} response.Detail
// @Failure 404 {object} response.ErrorResponse "Coalition not found"
// @Security BearerAuth
// @Router /api/v1/coalitions/{id} [delete]
func (r *Routers) DeleteCoalition(c echo.Context) error {
	const op = "http.routers.DeleteCoalition"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	name, err := r.Coalitions.Delete(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Detail{
		Detail: fmt.Sprintf("Coalition '%s' deleted successfully", name),
	})
}

// JoinCoalition godoc
// @Summary Join a coalition as the current user
// @Tags coalitions
// @Produce json
// @Param id path int true "Coalition ID"
// @Success 200 {object} models.Coalition
// @Failure 400 {object} response.ErrorResponse "User already a member"
// @Failure 404 {object} response.ErrorResponse "Coalition not found"
// @Security BearerAuth
// @Router /api/v1/coalitions/{id}/join [post]
func (r *Routers) JoinCoalition(c echo.Context) error {
	return r.membership(c, "http.routers.JoinCoalition", r.Coalitions.Join)
}

// LeaveCoalition godoc
// @Summary Leave a coalition as the current user
// @Tags coalitions
// @Produce json
// @Param id path int true "Coalition ID"
// @Success 200 {object} models.Coalition
// @Failure 400 {object} response.ErrorResponse "User not a member of this coalition"
// @Failure 404 {object} response.ErrorResponse "Coalition not found"
// @Security BearerAuth
// @Router /api/v1/coalitions/{id}/leave [post]
func (r *Routers) LeaveCoalition(c echo.Context) error {
	return r.membership(c, "http.routers.LeaveCoalition", r.Coalitions.Leave)
}

// membership applies change for the current user and answers with the
// coalition as it looks afterwards.
func (r *Routers) membership(c echo.Context, op string, change func(ctx context.Context, coalitionID, userID int64) error) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := change(ctx, id, user.ID); err != nil {
		return r.fail(c, op, err)
	}

	coalition, err := r.Coalitions.Get(ctx, id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, coalition)
}

// CoalitionMembers godoc
// @Summary List coalition members
// @Tags coalitions
// @Produce json
// @Param id path int true "Coalition ID"
// @Success 200 {array} dto.UserResponse
// @Failure 404 {object} response.ErrorResponse "Coalition not found"
// @Router /api/v1/coalitions/{id}/members [get]
func (r *Routers) CoalitionMembers(c echo.Context) error {
	const op = "http.routers.CoalitionMembers"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	members, err := r.Coalitions.Members(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponses(members))
}
