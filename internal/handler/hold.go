package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studycafe/seat-reservation/internal/service"
)

// HoldHandler exposes the hold lifecycle: place or renew a hold, and
// release one.
type HoldHandler struct {
	Holds *service.HoldService
}

// NewHoldHandler constructs a HoldHandler.
func NewHoldHandler(holds *service.HoldService) *HoldHandler {
	if holds == nil {
		panic("nil service passed to NewHoldHandler")
	}
	return &HoldHandler{Holds: holds}
}

// holdRequest is the body of POST /v1/seats/:id/hold. The window is the
// half-open [start_time, end_time) interval the user wants the seat for.
type holdRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// Hold handles POST /v1/seats/:id/hold.
func (h *HoldHandler) Hold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	seatID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Holds.HoldSeat(c.Request().Context(), seatID, userID, req.StartTime, req.EndTime); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "seat held"})
}

// Release handles DELETE /v1/seats/:id/hold.
func (h *HoldHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	seatID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.Holds.ReleaseHold(c.Request().Context(), seatID, userID); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hold released"})
}
