// Package router wires HTTP routes to their handlers.  Public browse
// routes sit behind the Redis response cache; everything under /v1
// shares the token-bucket rate limiter when Redis is up.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/handler"
	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/model"
)

// RegisterRoutes registers routes that need no authentication and no
// state: currently just the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Register, login and
// refresh live under /v1/auth without a JWT; /v1/me and the revoke-all
// form of logout need one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout with a refresh_token in the body revokes that session and
	// needs no JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleStaff),
	)
	auth.GET("/me", a.Me)
	// The same handler behind a JWT revokes every session of the caller
	// when the body carries no refresh_token.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse surface and the
// pre-registration form.  The cache middleware only applies to the
// GET endpoints; POSTs pass through it untouched.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, pr *handler.PreRegistrationHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/adventures", p.ListAdventures)
	g.GET("/adventures/:slug", p.GetAdventure)
	g.GET("/events/:id", p.GetEvent)
	g.GET("/rewards", p.ListRewards)
	g.GET("/levels", p.ListLevels)

	e.POST("/v1/pre-registrations", pr.Create)
	e.POST("/v1/pre-registrations/check-cpf", pr.CheckCPF)
}
