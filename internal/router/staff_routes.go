package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/handler"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/middleware"
)

// RegisterStaff registers the desk and back-office endpoints under
// /v1/staff.  Every route requires a valid JWT; each one additionally
// names the permission it needs, so role coverage is decided in one
// place (the permission table) rather than per route group.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, act *handler.ActivityHandler, jwtSecret string) {
	g := e.Group("/v1/staff", middleware.JWTAuth(jwtSecret))

	// ---- Bookings ----
	g.POST("/bookings", s.CreateBooking, middleware.RequirePermission(middleware.PermBookingsCreate))
	g.GET("/bookings", s.ListBookings, middleware.RequirePermission(middleware.PermBookingsRead))
	g.GET("/bookings/calendar", s.Calendar, middleware.RequirePermission(middleware.PermBookingsRead))
	g.GET("/bookings/:id", s.GetBooking, middleware.RequirePermission(middleware.PermBookingsRead))
	g.POST("/bookings/:id/check-in", s.CheckIn, middleware.RequirePermission(middleware.PermBookingsCheckIn))
	g.POST("/bookings/:id/check-out", s.CheckOut, middleware.RequirePermission(middleware.PermBookingsCheckOut))
	g.POST("/bookings/:id/cancel", s.Cancel, middleware.RequirePermission(middleware.PermBookingsCancel))

	// ---- Rooms ----
	g.POST("/rooms", s.CreateRoom, middleware.RequirePermission(middleware.PermRoomsWrite))
	g.PATCH("/rooms/:id/status", s.UpdateRoomStatus, middleware.RequirePermission(middleware.PermRoomsWrite))

	// ---- Activity log ----
	g.GET("/activity", act.Query, middleware.RequirePermission(middleware.PermActivityRead))
	g.DELETE("/activity", act.Purge, middleware.RequirePermission(middleware.PermActivityPurge))
}
