package middleware

import (
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

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
}

func newCacheContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/rooms")
	return c, rec
}

func TestRedisCache_Hit(t *testing.T) {
	cfg := cacheTestConfig()
	e := echo.New()
	c, rec := newCacheContext(e)

	cached := []byte(`{"rooms":[]}`)
	payload, err := encodePayload(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, cached)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKeyFrom(cfg, c)).SetVal(string(payload))

	handlerCalled := false
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		handlerCalled = true
		return c.JSON(http.StatusOK, echo.Map{"rooms": []string{"fresh"}})
	})
	require.NoError(t, h(c))

	assert.False(t, handlerCalled, "a hit never reaches the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(cached), rec.Body.String())
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_MissStoresResponse(t *testing.T) {
	cfg := cacheTestConfig()
	e := echo.New()
	c, rec := newCacheContext(e)

	rdb, mock := redismock.NewClientMock()
	key := cacheKeyFrom(cfg, c)
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSetEx(key, `.*`, cfg.TTL).SetVal("OK")

	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	})
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SkipsUncachedMethods(t *testing.T) {
	cfg := cacheTestConfig()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings")

	rdb, mock := redismock.NewClientMock()

	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no Redis traffic for non-cached methods")
}

func TestRedisCache_DisabledIsPassThrough(t *testing.T) {
	e := echo.New()
	c, rec := newCacheContext(e)

	h := NewRedisCache(config.CacheConfig{Enabled: false}, nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "direct")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "direct", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "Etag": {`"v1"`}}
	body := []byte(`{"ok":true}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)
}
