package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// Permission strings guarded by RequirePermission.  Routes name the
// permission they need; roles map to permission sets below.  The table
// is static; changing it is a code change, not configuration.
const (
	PermBookingsCreate   = "bookings:create"
	PermBookingsRead     = "bookings:read"
	PermBookingsCheckIn  = "bookings:checkin"
	PermBookingsCheckOut = "bookings:checkout"
	PermBookingsCancel   = "bookings:cancel"
	PermRoomsRead        = "rooms:read"
	PermRoomsWrite       = "rooms:write"
	PermActivityRead     = "activity:read"
	PermActivityPurge    = "activity:purge"
)

// rolePermissions is the static role → permission-set table.  ADMIN
// holds every permission; MANAGER everything except the activity
// purge; RECEPTIONIST the day-to-day desk operations; CUSTOMER nothing
// staff-side (public endpoints are unguarded).
var rolePermissions = map[string]map[string]bool{
	model.RoleAdmin: permSet(
		PermBookingsCreate, PermBookingsRead, PermBookingsCheckIn, PermBookingsCheckOut,
		PermBookingsCancel, PermRoomsRead, PermRoomsWrite, PermActivityRead, PermActivityPurge,
	),
	model.RoleManager: permSet(
		PermBookingsCreate, PermBookingsRead, PermBookingsCheckIn, PermBookingsCheckOut,
		PermBookingsCancel, PermRoomsRead, PermRoomsWrite, PermActivityRead,
	),
	model.RoleReceptionist: permSet(
		PermBookingsCreate, PermBookingsRead, PermBookingsCheckIn, PermBookingsCheckOut,
		PermRoomsRead,
	),
	model.RoleCustomer: permSet(),
}

func permSet(perms ...string) map[string]bool {
	m := make(map[string]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// RoleHasPermission reports whether the static table grants the
// permission to the role.  Unknown roles hold no permissions.
func RoleHasPermission(role, perm string) bool {
	return rolePermissions[role][perm]
}

// RequirePermission returns a middleware that enforces that the
// authenticated caller's role holds the named permission.  It assumes
// JWTAuth has already stored the role in the context under "role".
// A missing or insufficient role is answered with the distinguished
// 403 forbidden body, never a generic error, so clients can tell a
// permission denial from a failure.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !RoleHasPermission(role, perm) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
