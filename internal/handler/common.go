// Package handler contains the HTTP layer over the booking core. The
// handlers are deliberately thin: bind, validate, call the service,
// translate the typed error. Authentication happens upstream; the
// gateway forwards the authenticated user in the X-User-ID header.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/studycafe/seat-reservation/internal/repository"
	"github.com/studycafe/seat-reservation/internal/service"
)

// userIDHeader carries the authenticated user id, set by the upstream
// gateway after it has verified the session.
const userIDHeader = "X-User-ID"

// Validator adapts go-playground/validator to echo's Validator hook.
type Validator struct{ validate *validator.Validate }

// NewValidator returns a request-body validator.
func NewValidator() *Validator { return &Validator{validate: validator.New()} }

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// getUserID extracts the authenticated user id from the request.
func getUserID(c echo.Context) (uint64, error) {
	raw := c.Request().Header.Get(userIDHeader)
	if raw == "" {
		return 0, errors.New("missing " + userIDHeader + " header")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + userIDHeader + " header")
	}
	return id, nil
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// jsonError translates a core error into the matching HTTP response.
func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrZoneNotFound),
		errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotHoldOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOverlapConflict),
		errors.Is(err, service.ErrHoldConflict),
		errors.Is(err, repository.ErrAlreadyEntered):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
