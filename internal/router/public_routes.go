package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/handler"
)

// RegisterPublic registers the unauthenticated guest endpoints.  Browse
// routes sit behind the Redis response cache; the booking and lookup
// routes sit behind the token-bucket rate limiter so a scripted client
// cannot hammer the availability check or mass-create bookings.  Both
// middlewares degrade to pass-through when disabled or when Redis is
// absent.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limiter, cache echo.MiddlewareFunc) {
	// Browse: cacheable reads.
	e.GET("/v1/rooms", p.ListRooms, cache)
	e.GET("/v1/rooms/:id", p.GetRoom, cache)
	e.GET("/v1/rooms/:id/availability", p.CheckAvailability, limiter)

	// Booking creation and self-service lookups.
	e.POST("/v1/bookings", p.CreateBooking, limiter)
	e.POST("/v1/bookings/lookup", p.LookupBooking, limiter)
	e.GET("/v1/bookings/reference/:reference", p.BookingByReference, limiter)

	// Payment return page polls this after the gateway redirect.
	e.GET("/v1/payments/verify/:reference", p.VerifyPayment, limiter)
}

// RegisterWebhook registers the payment provider callback.  The route
// authenticates by HMAC signature, so neither JWT middleware nor rate
// limiting applies; throttling provider retries would only delay
// reconciliation.
func RegisterWebhook(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/v1/payments/webhook", w.Receive)
}
