// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/turfbook/turf-booking/internal/config"
	"github.com/turfbook/turf-booking/internal/handler"
	"github.com/turfbook/turf-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not depend on handlers with
// injected repositories. Currently that is only the health check used
// by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse and booking-flow
// endpoints. The GET listings run behind the Redis response cache and
// every public route behind the rate limiter; both middlewares degrade
// to pass-throughs when Redis is unavailable, so the booking core
// never depends on it.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, b *handler.BookingHandler, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Browse surface: cacheable, lock-free reads.
	e.GET("/", p.ListSports, limiter, cache)
	e.GET("/slots/:sport_id/", p.ListSlots, limiter, cache)
	e.GET("/contact/", p.Contact, limiter, cache)

	// Booking flow. The intermediate steps are stateless echoes; only
	// /confirm/ mutates anything, inside its transaction.
	e.POST("/booking/details/", b.Details, limiter)
	e.POST("/payment/", b.Payment, limiter)
	e.POST("/confirm/", b.Confirm, limiter)

	// Verification surface driven by the QR payload.
	e.GET("/verify/:public_id/", b.Verify, limiter)
	e.GET("/download/:public_id/", b.Download, limiter)
	e.GET("/qr/:public_id/", b.QR, limiter)
}

// RegisterStaff registers the staff panel. Login and logout are open;
// everything else requires a valid staff access token. The staff
// routes are never cached: the toggle grid must always show live
// booked state.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	e.POST("/staff/login/", s.Login)
	e.POST("/staff/logout/", s.Logout)

	g := e.Group("/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireStaff())
	g.GET("/dashboard/", s.Dashboard)
	g.GET("/booking/:sport_id/", s.BookingGrid)
	g.POST("/toggle/:slot_id/", s.Toggle)
}
