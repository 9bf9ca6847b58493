package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware)
	e.GET("/products/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/products/:id", "200"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/products/:id", "200"))
	assert.Equal(t, 2.0, after-before)
}

func TestMiddlewareRecordsHTTPErrorStatus(t *testing.T) {
	e := echo.New()
	e.Use(Middleware)
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "502"))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "502"))-before)
}

func TestCacheAndUpstreamCounters(t *testing.T) {
	hits := testutil.ToFloat64(cacheRequestsTotal.WithLabelValues(CacheHit))
	CacheLookup(CacheHit)
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheRequestsTotal.WithLabelValues(CacheHit))-hits)

	failed := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues(http.MethodGet, "error"))
	Upstream(http.MethodGet, 0, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues(http.MethodGet, "error"))-failed)
}

func TestHandlerExposesCollectors(t *testing.T) {
	CacheLookup(CacheMiss)
	e := echo.New()
	e.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zina_cache_requests_total")
}
