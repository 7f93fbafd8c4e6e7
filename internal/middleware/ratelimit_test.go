package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/config"
)

func limiterTestConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

// limiterKey is the bucket key for httptest requests, whose remote
// address is always 192.0.2.1.
const limiterKey = "rl:ip:192.0.2.1"

func newLimiterContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings")
	return c, rec
}

func expectBucketRun(mock redismock.ClientMock) *redismock.ExpectedCmd {
	// The first argument is the wall clock in milliseconds.
	return mock.Regexp().ExpectEvalSha(tokenBucketScript.Hash(), []string{limiterKey},
		`\d+`, `^5$`, `^1$`, `^1000$`, `^60$`)
}

func TestTokenBucket_AllowsAndCountsDown(t *testing.T) {
	cfg := limiterTestConfig()
	e := echo.New()
	c, rec := newLimiterContext(e)

	db, mock := redismock.NewClientMock()
	expectBucketRun(mock).SetVal([]interface{}{int64(1), int64(4), int64(0)})

	called := false
	h := NewTokenBucket(cfg, db)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
	cfg := limiterTestConfig()
	e := echo.New()
	c, rec := newLimiterContext(e)

	db, mock := redismock.NewClientMock()
	expectBucketRun(mock).SetVal([]interface{}{int64(0), int64(0), int64(1000)})

	called := false
	h := NewTokenBucket(cfg, db)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.False(t, called, "the handler must not run")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBucket_FailsOpenOnRedisError(t *testing.T) {
	cfg := limiterTestConfig()
	e := echo.New()
	c, rec := newLimiterContext(e)

	db, mock := redismock.NewClientMock()
	expectBucketRun(mock).SetErr(errors.New("connection refused"))

	called := false
	h := NewTokenBucket(cfg, db)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called, "a Redis outage must not take the API down")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket_DisabledIsPassThrough(t *testing.T) {
	cfg := limiterTestConfig()
	cfg.Enabled = false
	e := echo.New()
	c, rec := newLimiterContext(e)

	called := false
	h := NewTokenBucket(cfg, nil)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
