package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studycafe/seat-reservation/internal/cache"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// BrowseHandler serves the read-only zone and seat listings. Reads are
// unlocked: a stale seat status is tolerated and corrected by lazy
// reclamation on the next write path, and the event stream keeps
// clients converging in between.
type BrowseHandler struct {
	ZoneRepo *repository.ZoneRepo
	SeatRepo *repository.SeatRepo
	Cache    *cache.SeatMapCache // may be nil when Redis is unavailable
}

// NewBrowseHandler constructs a BrowseHandler.
func NewBrowseHandler(zones *repository.ZoneRepo, seats *repository.SeatRepo, c *cache.SeatMapCache) *BrowseHandler {
	if zones == nil || seats == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{ZoneRepo: zones, SeatRepo: seats, Cache: c}
}

// zoneView is the JSON shape of one zone in the listing.
type zoneView struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// ListZones handles GET /v1/zones.
func (h *BrowseHandler) ListZones(c echo.Context) error {
	zones, err := h.ZoneRepo.List(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	out := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, zoneView{
			ID:          z.ID,
			Name:        z.Name,
			Description: z.Description,
			Latitude:    z.Latitude,
			Longitude:   z.Longitude,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// seatView is the JSON shape of one seat in the listing. Hold internals
// are reduced to what the seat map needs to render.
type seatView struct {
	ID         uint64           `json:"id"`
	Name       string           `json:"name"`
	PosX       int32            `json:"pos_x"`
	PosY       int32            `json:"pos_y"`
	Price      int32            `json:"price"`
	WindowSide bool             `json:"window_side"`
	HasOutlet  bool             `json:"has_outlet"`
	Quiet      bool             `json:"quiet"`
	Status     model.SeatStatus `json:"status"`
	HoldUntil  *time.Time       `json:"hold_until,omitempty"`
}

// ListZoneSeats handles GET /v1/zones/:id/seats. The optional query
// parameters window, outlet and quiet (true/false) filter on the static
// feature tags. Unfiltered listings are served from the seat-map cache
// when possible.
func (h *BrowseHandler) ListZoneSeats(c echo.Context) error {
	zoneID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	if _, err := h.ZoneRepo.GetByID(ctx, zoneID); err != nil {
		return jsonError(c, err)
	}

	filter, filtered, err := seatFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if !filtered && h.Cache != nil {
		if seats, ok := h.Cache.Get(ctx, zoneID); ok {
			return c.JSON(http.StatusOK, echo.Map{"items": toSeatViews(seats)})
		}
	}

	seats, err := h.SeatRepo.ListByZone(ctx, zoneID, filter)
	if err != nil {
		return jsonError(c, err)
	}
	if !filtered && h.Cache != nil {
		h.Cache.Set(ctx, zoneID, seats)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toSeatViews(seats)})
}

func seatFilterFromQuery(c echo.Context) (repository.SeatFilter, bool, error) {
	var (
		f        repository.SeatFilter
		filtered bool
	)
	for name, dst := range map[string]**bool{
		"window": &f.WindowSide,
		"outlet": &f.HasOutlet,
		"quiet":  &f.Quiet,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, false, err
		}
		*dst = &v
		filtered = true
	}
	return f, filtered, nil
}

func toSeatViews(seats []model.Seat) []seatView {
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		v := seatView{
			ID:         s.ID,
			Name:       s.Name,
			PosX:       s.PosX,
			PosY:       s.PosY,
			Price:      s.Price,
			WindowSide: s.WindowSide,
			HasOutlet:  s.HasOutlet,
			Quiet:      s.Quiet,
			Status:     s.Status,
		}
		if s.Status == model.SeatHeld {
			v.HoldUntil = s.HoldExpiresAt
		}
		out = append(out, v)
	}
	return out
}
