package router

import (
	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/handler"
	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/model"
)

// RegisterCustomer registers the authenticated customer surface:
// bookings, payments and the loyalty account.  Staff pass the role
// check too, so they can act on their own bookings.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, l *handler.LoyaltyHandler, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleStaff),
	)

	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/cancel", b.Cancel)

	g.POST("/bookings/:id/payments/pix", p.CreatePix)
	g.POST("/bookings/:id/payments/card", p.ProcessCard)
	g.GET("/bookings/:id/payments", p.ListByBooking)
	g.POST("/payments/:id/verify", p.VerifyPix)

	g.GET("/me/loyalty", l.Summary)
	g.GET("/me/rewards", l.Redemptions)
	g.POST("/rewards/:id/redeem", l.Redeem)
}
