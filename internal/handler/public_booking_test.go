package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/handler"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// stubGateway answers every Initialize and Verify with a fixed result.
type stubGateway struct {
	verifyStatus string
}

func (g *stubGateway) Initialize(_ context.Context, _ string, _ float64, reference string, _ map[string]string) (*payment.Authorization, error) {
	return &payment.Authorization{
		AuthorizationURL: "https://checkout.example.com/" + reference,
		AccessCode:       "ac_stub",
		Reference:        reference,
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*payment.VerifyResult, error) {
	return &payment.VerifyResult{
		Reference:   reference,
		Status:      g.verifyStatus,
		AmountCents: 20000,
		RawResponse: `{"status":true}`,
	}, nil
}

func newPublicEnv(gw booking.Gateway) (*stubState, *handler.PublicHandler) {
	s := &stubState{
		room: model.Room{
			ID: 1, RoomNumber: "101", RoomType: model.RoomTypeDouble,
			PriceCents: 10000, Capacity: 2, Status: model.RoomStatusAvailable,
		},
		email: "guest@example.com",
		booking: model.Booking{
			ID: 1, BookingNumber: "BK-PUB00001", RoomID: 1, CustomerID: 1,
			CheckInDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			CheckOutDate:  time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			BookingStatus: model.BookingStatusConfirmed,
			PaymentStatus: model.PaymentStatusPending,
		},
		payment: model.Payment{
			ID: 1, BookingID: 1, Reference: "HMS-pub1",
			AmountCents: 20000, Status: model.PaymentIntentPending,
		},
	}
	svc := booking.NewService(&stubRooms{s}, &stubCustomers{s}, &stubBookings{s}, &stubPayments{s}, booking.Config{Gateway: gw})
	// Room browsing is not under test; a zero repo satisfies the
	// constructor's nil check.
	return s, handler.NewPublicHandler(svc, &repository.RoomRepo{})
}

func serveJSON(t *testing.T, method, target, body string, fn echo.HandlerFunc, params ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, fn(c))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestPublicCreateBooking_SuccessEnvelope(t *testing.T) {
	_, h := newPublicEnv(&stubGateway{verifyStatus: "success"})
	body := `{"room_id":1,"email":"guest@example.com","first_name":"Ada","last_name":"Mensah",
		"check_in_date":"2026-10-01","check_out_date":"2026-10-03","guests":2}`

	rec, out := serveJSON(t, http.MethodPost, "/v1/bookings", body, h.CreateBooking)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])
	bk, ok := out["booking"].(map[string]any)
	require.True(t, ok, "booking object present")
	assert.NotEmpty(t, bk["booking_number"])
	pay, ok := out["payment"].(map[string]any)
	require.True(t, ok, "payment object present")
	assert.Contains(t, pay["authorization_url"], "https://checkout.example.com/")
}

func TestPublicCreateBooking_ErrorEnvelope(t *testing.T) {
	_, h := newPublicEnv(nil)
	body := `{"room_id":99,"email":"guest@example.com","first_name":"Ada","last_name":"Mensah",
		"check_in_date":"2026-10-01","check_out_date":"2026-10-03"}`

	rec, out := serveJSON(t, http.MethodPost, "/v1/bookings", body, h.CreateBooking)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestPublicLookupBooking_Envelope(t *testing.T) {
	_, h := newPublicEnv(nil)

	body := `{"booking_number":"BK-PUB00001","email":"guest@example.com"}`
	rec, out := serveJSON(t, http.MethodPost, "/v1/bookings/lookup", body, h.LookupBooking)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	bk := out["booking"].(map[string]any)
	assert.Equal(t, "BK-PUB00001", bk["booking_number"])

	// Wrong email gets the same shape with success false.
	body = `{"booking_number":"BK-PUB00001","email":"other@example.com"}`
	rec, out = serveJSON(t, http.MethodPost, "/v1/bookings/lookup", body, h.LookupBooking)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestPublicVerifyPayment_Envelope(t *testing.T) {
	s, h := newPublicEnv(&stubGateway{verifyStatus: "success"})

	rec, out := serveJSON(t, http.MethodGet, "/v1/payments/verify/HMS-pub1", "", h.VerifyPayment, "reference", "HMS-pub1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "HMS-pub1", out["reference"])
	assert.Equal(t, true, out["applied"])
	assert.Equal(t, model.PaymentIntentSuccess, s.payment.Status)

	rec, out = serveJSON(t, http.MethodGet, "/v1/payments/verify/HMS-nope", "", h.VerifyPayment, "reference", "HMS-nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
}
