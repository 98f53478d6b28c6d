package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"breate/internal/lib/logger/sl"
	"breate/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const dbCheckTimeout = 3 * time.Second

// Root godoc
// @Summary Welcome message
// @Tags root
// @Produce json
// @Success 200 {object} response.Message
// @Router / [get]
func (r *Routers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Message{Message: "Welcome to the Breate API!"})
}

// Health godoc
// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} response.Status
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Status{Status: "ok"})
}

// HealthDB godoc
// @Summary Database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} response.DBStatus
// @Failure 503 {object} response.DBStatus
// @Router /health/db [get]
func (r *Routers) HealthDB(c echo.Context) error {
	const op = "http.routers.HealthDB"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbCheckTimeout)
	defer cancel()

	version, err := r.DB.Version(ctx)
	if err != nil {
		r.log.Warn("database check failed", slog.String("op", op), sl.Err(err))

		return c.JSON(http.StatusServiceUnavailable, response.DBStatus{
			Status: "Connection failed",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, response.DBStatus{
		Status:          "Connected",
		PostgresVersion: version,
	})
}
