package http

import (
	"net/http"

	"breate/internal/transport/http/dto"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListArchetypes godoc
// @Summary List archetypes
// @Tags archetypes
// @Produce json
// @Success 200 {array} models.Archetype
// @Failure 404 {object} response.ErrorResponse "No archetypes found"
// @Router /api/v1/archetypes [get]
func (r *Routers) ListArchetypes(c echo.Context) error {
	const op = "http.routers.ListArchetypes"

	list, err := r.Catalog.ListArchetypes(c.Request().Context())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, list)
}

// GetArchetype godoc
// @Summary Get an archetype
// @Tags archetypes
// @Produce json
// @Param id path int true "Archetype ID"
// @Success 200 {object} models.Archetype
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/archetypes/{id} [get]
func (r *Routers) GetArchetype(c echo.Context) error {
	const op = "http.routers.GetArchetype"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	a, err := r.Catalog.Archetype(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, a)
}

// CreateArchetype godoc
// @Summary Create an archetype
// @Tags archetypes
// @Accept json
// @Produce json
// @Param request body dto.ArchetypeRequest true "Archetype"
// @Success 201 {object} models.Archetype
// @Failure 409 {object} response.ErrorResponse "Name already exists"
// @Security BearerAuth
// @Router /api/v1/archetypes [post]
func (r *Routers) CreateArchetype(c echo.Context) error {
	const op = "http.routers.CreateArchetype"

	var req dto.ArchetypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	a, err := r.Catalog.CreateArchetype(c.Request().Context(), req.ToDomain())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, a)
}

// DeleteArchetype godoc
// @Summary Delete an archetype
// @Tags archetypes
// @Produce json
// @Param id path int true "Archetype ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Still assigned to users"
// @Security BearerAuth
// @Router /api/v1/archetypes/{id} [delete]
func (r *Routers) DeleteArchetype(c echo.Context) error {
	const op = "http.routers.DeleteArchetype"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := r.Catalog.DeleteArchetype(c.Request().Context(), id); err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Message{Message: "Archetype deleted successfully"})
}

// ListTiers godoc
// @Summary List tiers
// @Description Ordered by level.
// @Tags tiers
// @Produce json
// @Success 200 {array} models.Tier
// @Failure 404 {object} response.ErrorResponse "No tiers found"
// @Router /api/v1/tiers [get]
func (r *Routers) ListTiers(c echo.Context) error {
	const op = "http.routers.ListTiers"

	list, err := r.Catalog.ListTiers(c.Request().Context())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, list)
}

// GetTier godoc
// @Summary Get a tier
// @Tags tiers
// @Produce json
// @Param id path int true "Tier ID"
// @Success 200 {object} models.Tier
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/tiers/{id} [get]
func (r *Routers) GetTier(c echo.Context) error {
	const op = "http.routers.GetTier"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	t, err := r.Catalog.Tier(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, t)
}

// CreateTier godoc
// @Summary Create a tier
// @Tags tiers
// @Accept json
// @Produce json
// @Param request body dto.TierRequest true "Tier"
// @Success 201 {object} models.Tier
// @Failure 409 {object} response.ErrorResponse "Name already exists"
// @Security BearerAuth
// @Router /api/v1/tiers [post]
func (r *Routers) CreateTier(c echo.Context) error {
	const op = "http.routers.CreateTier"

	var req dto.TierRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	t, err := r.Catalog.CreateTier(c.Request().Context(), req.ToDomain())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, t)
}

// DeleteTier godoc
// @Summary Delete a tier
// @Tags tiers
// @Produce json
// @Param id path int true "Tier ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Still assigned to users"
// @Security BearerAuth
// @Router /api/v1/tiers/{id} [delete]
func (r *Routers) DeleteTier(c echo.Context) error {
	const op = "http.routers.DeleteTier"

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := r.Catalog.DeleteTier(c.Request().Context(), id); err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Message{Message: "Tier deleted successfully"})
}
