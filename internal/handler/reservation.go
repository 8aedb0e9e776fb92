package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/repository"
	"github.com/studycafe/seat-reservation/internal/service"
)

// ReservationHandler exposes reservation confirmation, cancellation and
// the caller's reservation history.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Repo         *repository.ReservationRepo
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc *service.ReservationService, repo *repository.ReservationRepo) *ReservationHandler {
	if svc == nil || repo == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc, Repo: repo}
}

// reserveRequest is the body of POST /v1/reservations. The approval_ref
// links the batch to the external payment approval that authorized it.
type reserveRequest struct {
	SeatIDs     []uint64  `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	ApprovalRef string    `json:"approval_ref" validate:"required"`
}

// Reserve handles POST /v1/reservations. Commitment is per seat: on a
// partial failure the response names the failing seat, and the caller
// reverses the committed part by canceling the approval.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.Reservations.ReserveSeats(c.Request().Context(),
		req.SeatIDs, userID, req.StartTime, req.EndTime, req.ApprovalRef)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "seats reserved"})
}

// CancelByApproval handles DELETE /v1/payments/:ref/reservations. It
// reverses every reservation linked to the approval and reports how
// many were actually reversed. Already-canceled rows count as done, so
// retrying a cancellation is safe.
func (h *ReservationHandler) CancelByApproval(c echo.Context) error {
	ref := c.Param("ref")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing approval ref"})
	}

	count, err := h.Reservations.CancelReservationsByApproval(c.Request().Context(), ref)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"canceled": count})
}

// reservationView is the JSON shape of one reservation in the history
// listing. The entry token is included only for rows the caller can
// still use it on.
type reservationView struct {
	ID         uint64                  `json:"id"`
	SeatID     uint64                  `json:"seat_id"`
	StartTime  time.Time               `json:"start_time"`
	EndTime    time.Time               `json:"end_time"`
	Status     model.ReservationStatus `json:"status"`
	EntryToken string                  `json:"entry_token,omitempty"`
	Entered    bool                    `json:"entered"`
}

// ListMine handles GET /v1/reservations. It returns the authenticated
// user's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	list, err := h.Repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return jsonError(c, err)
	}
	out := make([]reservationView, 0, len(list))
	for _, r := range list {
		v := reservationView{
			ID:        r.ID,
			SeatID:    r.SeatID,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Status:    r.Status,
			Entered:   r.Entered,
		}
		if r.Status == model.ReservationReserved && !r.Entered {
			v.EntryToken = r.EntryToken
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
