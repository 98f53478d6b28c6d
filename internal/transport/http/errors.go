package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"breate/internal/lib/logger/sl"
	"breate/internal/services/auth"
	catalogsvc "breate/internal/services/catalog_service"
	coalitionsvc "breate/internal/services/coalition_service"
	collabsvc "breate/internal/services/collab_service"
	projectsvc "breate/internal/services/project_service"
	usersvc "breate/internal/services/user_service"
	"breate/internal/transport/http/dto/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type errorMapping struct {
	target error
	status int
	detail string
}

// Duplicate email and username answer 400, as API clients already expect.
var errorTable = []errorMapping{
	{auth.ErrUserExist, http.StatusBadRequest, "Email already registered"},
	{auth.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{auth.ErrInvalidReference, http.StatusUnprocessableEntity, "Unknown archetype or tier"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{auth.ErrUserNotFound, http.StatusNotFound, "User not found"},

	{usersvc.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{usersvc.ErrForbidden, http.StatusForbidden, "Not authorized to edit this profile"},
	{usersvc.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{usersvc.ErrUsernameLocked, http.StatusConflict, "Username is referenced by collaborations"},

	{catalogsvc.ErrNoArchetypes, http.StatusNotFound, "No archetypes found"},
	{catalogsvc.ErrNoTiers, http.StatusNotFound, "No tiers found"},
	{catalogsvc.ErrArchetypeNotFound, http.StatusNotFound, "Archetype not found"},
	{catalogsvc.ErrTierNotFound, http.StatusNotFound, "Tier not found"},
	{catalogsvc.ErrNameTaken, http.StatusConflict, "Name already exists"},
	{catalogsvc.ErrInUse, http.StatusConflict, "Still assigned to users"},

	{coalitionsvc.ErrCoalitionNotFound, http.StatusNotFound, "Coalition not found"},
	{coalitionsvc.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{coalitionsvc.ErrAlreadyMember, http.StatusBadRequest, "User already a member"},
	{coalitionsvc.ErrNotMember, http.StatusBadRequest, "User not a member of this coalition"},

	{projectsvc.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{projectsvc.ErrForbidden, http.StatusForbidden, "Not authorized to delete this project"},

	{collabsvc.ErrUsersNotFound, http.StatusNotFound, "One or both users not found"},
	{collabsvc.ErrCollabExists, http.StatusBadRequest, "Collaboration already exists"},
	{collabsvc.ErrCollabNotFound, http.StatusNotFound, "Collaboration not found"},
	{collabsvc.ErrSelfCollab, http.StatusBadRequest, "Cannot collaborate with yourself"},
	{collabsvc.ErrNotParty, http.StatusForbidden, "Not a party to this collaboration"},
}

// fail converts a service error into the HTTP error the client sees.
// Unmapped errors are logged and hidden behind a 500.
func (r *Routers) fail(c echo.Context, op string, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return echo.NewHTTPError(m.status, m.detail)
		}
	}

	r.log.Error("request failed",
		slog.String("op", op),
		slog.String("path", c.Path()),
		sl.Err(err),
	)

	return echo.NewHTTPError(http.StatusInternalServerError, response.ErrInternal.Detail)
}

// bind decodes and validates the request. Undecodable bodies are a 400,
// well-formed bodies that break a rule are a 422.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidBody.Detail)
	}

	return validate(c, req)
}

func validate(c echo.Context, req any) error {
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validationDetail(err))
	}

	return nil
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: must satisfy %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s: must be a positive integer", name))
	}

	return id, nil
}

// queryID parses an optional numeric filter. An empty parameter means no filter.
func queryID(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s: must be an integer", name))
	}

	return &id, nil
}

// ErrorHandler renders every error as {"detail": "..."}.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := response.ErrInternal.Detail

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch msg := he.Message.(type) {
			case string:
				detail = msg
			case error:
				detail = msg.Error()
			default:
				detail = http.StatusText(status)
			}
		} else {
			log.Error("unhandled error", slog.String("path", c.Path()), sl.Err(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, response.ErrorResponse{Detail: detail})
		}
		if err != nil {
			log.Error("failed to write error response", sl.Err(err))
		}
	}
}
