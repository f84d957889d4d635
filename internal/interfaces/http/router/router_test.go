package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	rg.POST("/echo", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Data(http.StatusOK, "text/plain", body)
	})
	rg.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	api := NewRouter(engine).Register(pingRoutes{}).Setup()
	assert.Equal(t, "/api/v1", api.BasePath())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNewEngine(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)

	engine := NewEngine(EngineConfig{
		Mode: "test",
		HTTP: config.HTTPConfig{
			MaxUploadSize:    1024,
			CORSAllowOrigins: []string{"https://admin.example.com"},
		},
		Logger: zap.New(core),
	})
	NewRouter(engine).Register(pingRoutes{}).Setup()

	t.Run("request id, cors and access log", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		req.Header.Set("X-Request-ID", "req-9")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-9", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		entries := recorded.FilterMessage("http request").All()
		require.NotEmpty(t, entries)
		assert.Equal(t, "req-9", entries[len(entries)-1].ContextMap()["request_id"])
	})

	t.Run("body limit includes multipart slack", func(t *testing.T) {
		small := strings.Repeat("x", 2048)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(small)))
		assert.Equal(t, http.StatusOK, w.Code)

		huge := strings.Repeat("x", 1024+multipartOverhead+1)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(huge)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("panics become 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotEmpty(t, recorded.FilterMessage("panic recovered").All())
	})
}
