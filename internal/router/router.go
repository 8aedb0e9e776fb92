// Package router wires the HTTP endpoints to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studycafe/seat-reservation/internal/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Browse      *handler.BrowseHandler
	Hold        *handler.HoldHandler
	Reservation *handler.ReservationHandler
	Checkin     *handler.CheckinHandler
}

// Register mounts all routes on e. Identity comes from the X-User-ID
// header set by the upstream gateway; endpoints that need it reject
// requests without one.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/v1")

	// Public browsing.
	g.GET("/zones", h.Browse.ListZones)
	g.GET("/zones/:id/seats", h.Browse.ListZoneSeats)

	// Hold lifecycle.
	g.POST("/seats/:id/hold", h.Hold.Hold)
	g.DELETE("/seats/:id/hold", h.Hold.Release)

	// Reservations.
	g.POST("/reservations", h.Reservation.Reserve)
	g.GET("/reservations", h.Reservation.ListMine)
	g.DELETE("/payments/:ref/reservations", h.Reservation.CancelByApproval)

	// Door check-in.
	g.POST("/checkin/:token", h.Checkin.Checkin)
}
