package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// PublicHandler serves the guest-facing endpoints: browsing rooms,
// creating online bookings and checking on a payment.  None of these
// routes require authentication; abusive traffic is throttled by the
// rate limit middleware instead.
type PublicHandler struct {
	Svc   *booking.Service
	Rooms *repository.RoomRepo
}

// NewPublicHandler constructs a PublicHandler.  Both dependencies must
// be non-nil.
func NewPublicHandler(svc *booking.Service, rooms *repository.RoomRepo) *PublicHandler {
	if svc == nil || rooms == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Svc: svc, Rooms: rooms}
}

type createBookingReq struct {
	RoomID          uint64 `json:"room_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	CheckIn         string `json:"check_in_date"`
	CheckOut        string `json:"check_out_date"`
	Guests          uint32 `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

// CreateBooking handles POST /v1/bookings.  It creates an ONLINE
// booking and starts a payment intent with the gateway; the response
// carries the booking plus the authorization URL the guest is
// redirected to.  When two guests race for the same dates the loser
// receives 409.
func (h *PublicHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.RoomID == 0 || req.Email == "" || strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "room_id, email, first_name and last_name are required"})
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "check_in_date must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "check_out_date must be YYYY-MM-DD"})
	}
	if req.Guests == 0 {
		req.Guests = 1
	}

	res, err := h.Svc.CreateBooking(c.Request().Context(), booking.CreateBookingInput{
		RoomID:            req.RoomID,
		Email:             req.Email,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Phone:             strings.TrimSpace(req.Phone),
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Guests:            req.Guests,
		Source:            model.BookingSourceOnline,
		SpecialRequests:   req.SpecialRequests,
		InitializePayment: true,
		IPAddress:         c.RealIP(),
	})
	if err != nil {
		// The booking may have been committed even though the gateway
		// call failed; report both so the guest can retry payment.
		if res != nil && res.Booking != nil {
			return c.JSON(http.StatusCreated, echo.Map{
				"success":       true,
				"booking":       toBookingPart(res.Booking),
				"payment_error": "payment initialization failed, retry via verify",
			})
		}
		return h.createError(c, err)
	}

	body := echo.Map{"success": true, "booking": toBookingPart(res.Booking)}
	if res.Payment != nil {
		body["payment"] = echo.Map{
			"authorization_url": res.Payment.AuthorizationURL,
			"access_code":       res.Payment.AccessCode,
			"reference":         res.Payment.Reference,
		}
	}
	return c.JSON(http.StatusCreated, body)
}

func (h *PublicHandler) createError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidDateRange), errors.Is(err, booking.ErrTooManyGuests):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "room not found"})
	case errors.Is(err, repository.ErrRoomUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "room is not available for the selected dates"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create booking failed"})
	}
}

type lookupReq struct {
	BookingNumber string `json:"booking_number"`
	Email         string `json:"email"`
}

// LookupBooking handles POST /v1/bookings/lookup.  Guests have no
// accounts, so a booking is retrieved by its number plus the email it
// was made under.  The pair acts as a weak credential; a mismatch on
// either returns the same 404.
func (h *PublicHandler) LookupBooking(c echo.Context) error {
	var req lookupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	if strings.TrimSpace(req.BookingNumber) == "" || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "booking_number and email are required"})
	}
	b, err := h.Svc.LookupBooking(c.Request().Context(), req.BookingNumber, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": toBookingPart(b)})
}

// BookingByReference handles GET /v1/bookings/reference/:reference,
// resolving a gateway payment reference back to its booking.  Used by
// the payment return page.
func (h *PublicHandler) BookingByReference(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "reference required"})
	}
	b, err := h.Svc.GetBookingByPaymentReference(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) || errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": toBookingPart(b)})
}

// VerifyPayment handles GET /v1/payments/verify/:reference.  It asks
// the gateway for the transaction's current state and reconciles the
// answer into local records.  Safe to call any number of times; the
// webhook may already have settled the payment, in which case this is
// a read.
func (h *PublicHandler) VerifyPayment(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "reference required"})
	}
	res, err := h.Svc.VerifyAndReconcile(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "unknown payment reference"})
		}
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "payment provider unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "verify failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"reference": res.Payment.Reference,
		"status":    res.Payment.Status,
		"applied":   res.Applied,
		"conflict":  res.Conflict,
	})
}

// ListRooms handles GET /v1/rooms with an optional ?room_type filter.
func (h *PublicHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context(), strings.ToUpper(strings.TrimSpace(c.QueryParam("room_type"))))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "list rooms failed"})
	}
	out := make([]roomPart, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomPart(&rooms[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *PublicHandler) GetRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "get room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomPart(room)})
}

// CheckAvailability handles GET /v1/rooms/:id/availability.  It is a
// best-effort probe: a true answer can still lose the race at booking
// time, where the authoritative check runs inside the insert
// transaction.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid room id"})
	}
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "check_out must be YYYY-MM-DD"})
	}
	available, err := h.Svc.CheckAvailability(c.Request().Context(), id, checkIn, checkOut, 0)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidDateRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "room not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "availability check failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":   id,
		"check_in":  checkIn.Format(dateLayout),
		"check_out": checkOut.Format(dateLayout),
		"available": available,
	})
}
