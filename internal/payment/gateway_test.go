package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
)

func TestMajorToMinor(t *testing.T) {
	assert.Equal(t, int64(20000), payment.MajorToMinor(200.00))
	assert.Equal(t, int64(9999), payment.MajorToMinor(99.99))
	assert.Equal(t, int64(100), payment.MajorToMinor(1))
	assert.Equal(t, int64(1), payment.MajorToMinor(0.01))
	// Floating point artifacts round to the nearest unit.
	assert.Equal(t, int64(1010), payment.MajorToMinor(10.10))
}

func TestInitialize_SendsMinorUnits(t *testing.T) {
	var got struct {
		Email     string            `json:"email"`
		Amount    int64             `json:"amount"`
		Reference string            `json:"reference"`
		Metadata  map[string]string `json:"metadata"`
	}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc123",
			"access_code":"abc123","reference":"` + got.Reference + `"}}`))
	}))
	defer srv.Close()

	gw := payment.NewPaystackGateway("sk_test_secret", srv.URL, 5*time.Second)
	auth, err := gw.Initialize(context.Background(), "guest@example.com", 200.00, "HMS-ref1", map[string]string{"booking_number": "BK-1"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
	assert.Equal(t, "guest@example.com", got.Email)
	assert.Equal(t, int64(20000), got.Amount, "amount crosses the wire in the smallest unit")
	assert.Equal(t, "HMS-ref1", got.Reference)
	assert.Equal(t, "BK-1", got.Metadata["booking_number"])

	assert.Equal(t, "https://checkout.paystack.com/abc123", auth.AuthorizationURL)
	assert.Equal(t, "HMS-ref1", auth.Reference)
}

func TestInitialize_RejectsBadInputLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the provider")
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, time.Second)

	var gwErr *payment.GatewayError
	_, err := gw.Initialize(context.Background(), "", 100, "ref", nil)
	require.ErrorAs(t, err, &gwErr)

	_, err = gw.Initialize(context.Background(), "g@e.com", 0, "ref", nil)
	require.ErrorAs(t, err, &gwErr)

	_, err = gw.Initialize(context.Background(), "g@e.com", -5, "ref", nil)
	require.ErrorAs(t, err, &gwErr)
}

func TestInitialize_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, time.Second)

	_, err := gw.Initialize(context.Background(), "g@e.com", 100, "ref", nil)
	var gwErr *payment.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Error(), "Invalid key")
}

func TestInitialize_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, time.Second)

	_, err := gw.Initialize(context.Background(), "g@e.com", 100, "ref", nil)
	var gwErr *payment.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Error(), "502")
}

func TestVerify(t *testing.T) {
	body := `{"status":true,"message":"Verification successful","data":{
		"status":"success","reference":"HMS-ref1","amount":20000}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/HMS-ref1", r.URL.Path)
		w.Write([]byte(body))
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, time.Second)

	v, err := gw.Verify(context.Background(), "HMS-ref1")
	require.NoError(t, err)
	assert.Equal(t, "HMS-ref1", v.Reference)
	assert.Equal(t, int64(20000), v.AmountCents)
	assert.True(t, v.Success())
	assert.JSONEq(t, body, v.RawResponse, "raw payload is preserved for audit")
}

func TestVerify_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"message":"ok","data":{"status":"abandoned","reference":"r","amount":0}}`))
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, time.Second)

	v, err := gw.Verify(context.Background(), "r")
	require.NoError(t, err)
	assert.False(t, v.Success())
}

func TestVerify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()
	gw := payment.NewPaystackGateway("sk", srv.URL, 50*time.Millisecond)

	_, err := gw.Verify(context.Background(), "slow")
	var gwErr *payment.GatewayError
	require.ErrorAs(t, err, &gwErr)
}
