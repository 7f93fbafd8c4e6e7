package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// StaffHandler serves the authenticated desk and back-office
// endpoints: manual bookings, check-in/check-out/cancel transitions,
// booking lists and the occupancy calendar.  Role checks happen in the
// permission middleware; handlers only need the user id for
// attribution.
type StaffHandler struct {
	Svc   *booking.Service
	Rooms *repository.RoomRepo
}

// NewStaffHandler constructs a StaffHandler.  Both dependencies must
// be non-nil.
func NewStaffHandler(svc *booking.Service, rooms *repository.RoomRepo) *StaffHandler {
	if svc == nil || rooms == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{Svc: svc, Rooms: rooms}
}

type staffCreateBookingReq struct {
	createBookingReq
	Source            string `json:"source"` // MANUAL | PHONE | WALK_IN
	InitializePayment bool   `json:"initialize_payment"`
}

// CreateBooking handles POST /v1/staff/bookings.  Desk staff create
// bookings on behalf of guests; payment collection at the desk is the
// default, so no payment intent is opened unless asked for.
func (h *StaffHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req staffCreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.RoomID == 0 || req.Email == "" || strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, email, first_name and last_name are required"})
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in_date must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out_date must be YYYY-MM-DD"})
	}
	if req.Guests == 0 {
		req.Guests = 1
	}
	source := strings.ToUpper(strings.TrimSpace(req.Source))
	switch source {
	case model.BookingSourcePhone, model.BookingSourceWalkIn, model.BookingSourceManual:
	case "":
		source = model.BookingSourceManual
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source must be MANUAL, PHONE or WALK_IN"})
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
		Source:            source,
		CreatedBy:         &userID,
		SpecialRequests:   req.SpecialRequests,
		InitializePayment: req.InitializePayment,
		IPAddress:         c.RealIP(),
	})
	if err != nil {
		if res != nil && res.Booking != nil {
			return c.JSON(http.StatusCreated, echo.Map{
				"booking":       toBookingPart(res.Booking),
				"payment_error": "payment initialization failed",
			})
		}
		switch {
		case errors.Is(err, booking.ErrInvalidDateRange), errors.Is(err, booking.ErrTooManyGuests):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, repository.ErrRoomUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "room is not available for the selected dates"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
		}
	}

	body := echo.Map{"booking": toBookingPart(res.Booking)}
	if res.Payment != nil {
		body["payment"] = echo.Map{
			"authorization_url": res.Payment.AuthorizationURL,
			"reference":         res.Payment.Reference,
		}
	}
	return c.JSON(http.StatusCreated, body)
}

// GetBooking handles GET /v1/staff/bookings/:id.
func (h *StaffHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get booking failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingPart(b)})
}

// ListBookings handles GET /v1/staff/bookings with optional
// booking_status, payment_status, room_id, from, to, page and
// per_page query parameters.
func (h *StaffHandler) ListBookings(c echo.Context) error {
	f := repository.BookingFilter{
		BookingStatus: strings.ToUpper(strings.TrimSpace(c.QueryParam("booking_status"))),
		PaymentStatus: strings.ToUpper(strings.TrimSpace(c.QueryParam("payment_status"))),
	}
	if raw := c.QueryParam("room_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		f.RoomID = id
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
		}
		f.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
		}
		f.To = t
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	details, err := h.Svc.ListBookings(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// Calendar handles GET /v1/staff/bookings/calendar?from=&to=.  It
// returns the active bookings overlapping the window, the data behind
// the occupancy grid.
func (h *StaffHandler) Calendar(c echo.Context) error {
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	if !from.Before(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be before to"})
	}
	events, err := h.Svc.CalendarEvents(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "calendar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// CheckIn handles POST /v1/staff/bookings/:id/check-in.
func (h *StaffHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.Svc.CheckIn)
}

// CheckOut handles POST /v1/staff/bookings/:id/check-out.
func (h *StaffHandler) CheckOut(c echo.Context) error {
	return h.transition(c, h.Svc.CheckOut)
}

// Cancel handles POST /v1/staff/bookings/:id/cancel.
func (h *StaffHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Svc.Cancel)
}

// transition runs one of the service's state-machine operations and
// maps its errors onto HTTP statuses.  State violations are 409
// Conflict rather than 400: the request was well-formed, the booking
// just isn't in a state that permits it.
func (h *StaffHandler) transition(c echo.Context, op func(ctx context.Context, bookingID, actorUserID uint64, ip string) (*model.Booking, error)) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := op(c.Request().Context(), id, userID, c.RealIP())
	if err != nil {
		var invalid *booking.InvalidTransitionError
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusConflict, echo.Map{"error": invalid.Error()})
		case errors.Is(err, booking.ErrOutsideStay), errors.Is(err, booking.ErrPaymentFailed):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking was modified concurrently, reload and retry"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingPart(b)})
}

type createRoomReq struct {
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
	PriceCents int64  `json:"price_cents"`
	Capacity   uint32 `json:"capacity"`
}

// CreateRoom handles POST /v1/staff/rooms.
func (h *StaffHandler) CreateRoom(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	req.RoomType = strings.ToUpper(strings.TrimSpace(req.RoomType))
	if req.RoomNumber == "" || req.PriceCents <= 0 || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_number, price_cents and capacity are required"})
	}
	switch req.RoomType {
	case model.RoomTypeSingle, model.RoomTypeDouble, model.RoomTypeSuite, model.RoomTypeDeluxe, model.RoomTypePresidential:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_type"})
	}
	room := &model.Room{
		RoomNumber: req.RoomNumber,
		RoomType:   req.RoomType,
		PriceCents: req.PriceCents,
		Capacity:   req.Capacity,
		Status:     model.RoomStatusAvailable,
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"room": toRoomPart(room)})
}

// UpdateRoomStatus handles PATCH /v1/staff/rooms/:id/status, used to
// take a room out of service or return it.
func (h *StaffHandler) UpdateRoomStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case model.RoomStatusAvailable, model.RoomStatusMaintenance:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be AVAILABLE or MAINTENANCE"})
	}
	if err := h.Rooms.UpdateStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}
