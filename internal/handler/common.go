package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// dateLayout is the wire format for calendar dates.  Times of day are
// never exchanged for stays; only whole dates.
const dateLayout = "2006-01-02"

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD string into a UTC midnight time.
func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// bookingPart is the JSON shape of a booking in API responses.  The
// model struct carries no json tags; handlers own the wire format.
type bookingPart struct {
	ID              uint64  `json:"id"`
	BookingNumber   string  `json:"booking_number"`
	RoomID          uint64  `json:"room_id"`
	CustomerID      uint64  `json:"customer_id"`
	CheckInDate     string  `json:"check_in_date"`
	CheckOutDate    string  `json:"check_out_date"`
	Guests          uint32  `json:"guests"`
	TotalCents      int64   `json:"total_cents"`
	BookingStatus   string  `json:"booking_status"`
	PaymentStatus   string  `json:"payment_status"`
	Source          string  `json:"source"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func toBookingPart(b *model.Booking) bookingPart {
	return bookingPart{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		RoomID:          b.RoomID,
		CustomerID:      b.CustomerID,
		CheckInDate:     b.CheckInDate.Format(dateLayout),
		CheckOutDate:    b.CheckOutDate.Format(dateLayout),
		Guests:          b.Guests,
		TotalCents:      b.TotalCents,
		BookingStatus:   b.BookingStatus,
		PaymentStatus:   b.PaymentStatus,
		Source:          b.Source,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// roomPart is the JSON shape of a room in API responses.
type roomPart struct {
	ID         uint64 `json:"id"`
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
	PriceCents int64  `json:"price_cents"`
	Capacity   uint32 `json:"capacity"`
	Status     string `json:"status"`
}

func toRoomPart(r *model.Room) roomPart {
	return roomPart{
		ID:         r.ID,
		RoomNumber: r.RoomNumber,
		RoomType:   r.RoomType,
		PriceCents: r.PriceCents,
		Capacity:   r.Capacity,
		Status:     r.Status,
	}
}
