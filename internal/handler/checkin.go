package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studycafe/seat-reservation/internal/repository"
)

// CheckinHandler consumes entry tokens at the door.
type CheckinHandler struct {
	Repo *repository.ReservationRepo
}

// NewCheckinHandler constructs a CheckinHandler.
func NewCheckinHandler(repo *repository.ReservationRepo) *CheckinHandler {
	if repo == nil {
		panic("nil repository passed to NewCheckinHandler")
	}
	return &CheckinHandler{Repo: repo}
}

// Checkin handles POST /v1/checkin/:token. The token is one-time: the
// first presentation marks the reservation entered, any later one gets
// a conflict.
func (h *CheckinHandler) Checkin(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing entry token"})
	}

	if err := h.Repo.MarkEntered(c.Request().Context(), token); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "checked in"})
}
