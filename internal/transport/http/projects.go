package http

import (
	"fmt"
	"net/http"

	"breate/internal/domain/models"
	"breate/internal/middleware"
	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListProjects godoc
// @Summary List projects, newest first
// @Tags projects
// @Produce json
// @Param archetype query string false "Only projects needing this archetype"
// @Param region query string false "Exact region; All disables the filter"
// @Success 200 {array} models.Project
// @Router /api/v1/projects [get]
func (r *Routers) ListProjects(c echo.Context) error {
	const op = "http.routers.ListProjects"

	list, err := r.Projects.List(c.Request().Context(), models.ProjectFilter{
		Archetype: c.QueryParam("archetype"),
		Region:    c.QueryParam("region"),
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, list)
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Router /api/v1/projects/{id} [get]
func (r *Routers) GetProject(c echo.Context) error {
	const op = "http.routers.GetProject"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p, err := r.Projects.Get(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, p)
}

// CreateProject godoc
// @Summary Post a project as the current user
// @Tags projects
// @Accept json
// @Produce json
// @Param request body dto.ProjectRequest true "Project"
// @Success 201 {object} models.Project
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/projects [post]
func (r *Routers) CreateProject(c echo.Context) error {
	const op = "http.routers.CreateProject"

	poster, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req dto.ProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := r.Projects.Create(c.Request().Context(), poster, req.ToDomain())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, p)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Only the poster may delete a project.
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Security BearerAuth
// @Router /api/v1/projects/{id} [delete]
func (r *Routers) DeleteProject(c echo.Context) error {
	const op = "http.routers.DeleteProject"

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	title, err := r.Projects.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Message{
		Message: fmt.Sprintf("Project '%s' deleted successfully", title),
	})
}
