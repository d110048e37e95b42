package router

import (
	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/handler"
	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/model"
)

// RegisterStaff registers the management surface under /v1/staff.
// Every route requires the STAFF role: catalog and tier maintenance,
// event scheduling, booking transitions and pre-registration review.
func RegisterStaff(e *echo.Echo, a *handler.StaffAdventureHandler, ev *handler.StaffEventHandler, b *handler.StaffBookingHandler, pr *handler.PreRegistrationHandler, jwtSecret string) {
	g := e.Group("/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	g.GET("/adventures", a.List)
	g.POST("/adventures", a.Create)
	g.PUT("/adventures/:id", a.Update)
	g.GET("/adventures/:id/tiers", a.ListTiers)
	g.POST("/adventures/:id/tiers", a.CreateTier)
	g.PUT("/adventures/:id/tiers/:tier_id", a.UpdateTier)
	g.DELETE("/adventures/:id/tiers/:tier_id", a.DeleteTier)

	g.GET("/adventures/:id/events", ev.ListByAdventure)
	g.POST("/adventures/:id/events", ev.Create)
	g.PUT("/events/:id", ev.Update)
	g.GET("/events/:id/bookings", ev.ListBookings)
	g.POST("/events/:id/recount", ev.Recount)
	g.POST("/events/:id/remind", ev.Remind)

	g.POST("/bookings/:id/approve", b.Approve)
	g.POST("/bookings/:id/reject", b.Reject)
	g.POST("/bookings/:id/cancel", b.Cancel)
	g.POST("/bookings/:id/complete", b.Complete)

	g.GET("/pre-registrations", pr.ListByStatus)
	g.POST("/pre-registrations/:id/approve", pr.Approve)
	g.POST("/pre-registrations/:id/reject", pr.Reject)
}
