package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seenInContext string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		seenInContext = logger.RequestID(c.Request.Context())
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an id when none is supplied", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 32)
		assert.Equal(t, id, w.Body.String())
		assert.Equal(t, id, seenInContext)
	})

	t.Run("reuses the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "caller-id", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "caller-id", seenInContext)
	})

	t.Run("truncates oversized ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", 300))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get("X-Request-ID"), MaxRequestIDLength)
	})
}

func TestCORSWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(cfg CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORSWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	tests := []struct {
		name          string
		origins       []string
		method        string
		origin        string
		expectedCode  int
		expectedAllow string
		expectedCreds string
	}{
		{"empty whitelist sets nothing", nil, http.MethodGet, "https://admin.example.com", http.StatusOK, "", ""},
		{"whitelisted origin", []string{"https://admin.example.com"}, http.MethodGet, "https://admin.example.com", http.StatusOK, "https://admin.example.com", "true"},
		{"unknown origin", []string{"https://admin.example.com"}, http.MethodGet, "https://evil.example.com", http.StatusOK, "", ""},
		{"wildcard never sends credentials", []string{"*"}, http.MethodGet, "https://any.example.com", http.StatusOK, "*", ""},
		{"preflight ends with no content", []string{"https://admin.example.com"}, http.MethodOptions, "https://admin.example.com", http.StatusNoContent, "https://admin.example.com", "true"},
		{"preflight from unknown origin", []string{"https://admin.example.com"}, http.MethodOptions, "https://evil.example.com", http.StatusNoContent, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowOrigins = tt.origins

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			newRouter(cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedAllow, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.expectedAllow != "" {
				assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSConfigFromHTTP(t *testing.T) {
	cfg := CORSConfigFromHTTP(config.HTTPConfig{
		CORSAllowOrigins: []string{"https://admin.example.com"},
		CORSAllowMethods: []string{"GET"},
	})

	assert.Equal(t, []string{"https://admin.example.com"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"GET"}, cfg.AllowMethods)
	assert.Equal(t, DefaultCORSConfig().AllowHeaders, cfg.AllowHeaders)
}

func TestTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("disabled is a pass through", func(t *testing.T) {
		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("span carries request and route identifiers", func(t *testing.T) {
		sr := setupTestTracer(t)

		router := gin.New()
		router.Use(RequestID(), TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}), SpanAttributes(), SpanErrorMarker())
		router.GET("/orders/:id/return-requests/:rid", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/orders/o-1/return-requests/r-1", nil)
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/orders/:id/return-requests/:rid")

		for key, expected := range map[string]string{
			"request_id":        "req-1",
			"order_id":          "o-1",
			"return_request_id": "r-1",
		} {
			value, ok := spanAttr(spans[0], key)
			assert.True(t, ok, key)
			assert.Equal(t, expected, value, key)
		}
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("error responses mark the span", func(t *testing.T) {
		tests := []struct {
			status  int
			message string
		}{
			{http.StatusBadRequest, "Client Error"},
			{http.StatusNotFound, "Not Found"},
			{http.StatusConflict, "Conflict"},
			{http.StatusInternalServerError, "Internal Server Error"},
		}

		for _, tt := range tests {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}), SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			class, ok := spanAttr(spans[0], "error.class")
			require.True(t, ok)
			assert.Equal(t, tt.message, class)
			if tt.status < http.StatusInternalServerError {
				assert.Equal(t, tt.message, spans[0].Status().Description)
			}
		}
	})
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("disabled provider is a pass through", func(t *testing.T) {
		router := gin.New()
		router.Use(HTTPMetrics(nil, zap.NewNop()))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("records requests by route", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		metrics, err := newHTTPMetrics(provider.Meter("test"))
		require.NoError(t, err)

		router := gin.New()
		router.Use(metrics.handle)
		router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		for range 2 {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		var found bool
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "http_server_request_total" {
					continue
				}
				sum := m.Data.(metricdata.Sum[int64])
				require.Len(t, sum.DataPoints, 1)
				dp := sum.DataPoints[0]
				assert.Equal(t, int64(2), dp.Value)
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				assert.Equal(t, "/orders/:id", route.AsString())
				status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
				assert.Equal(t, "404", status.AsString())
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("uses the telemetry meter provider", func(t *testing.T) {
		mp, err := telemetry.NewMeterProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())

		router := gin.New()
		router.Use(HTTPMetrics(mp, zap.NewNop()))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
