package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func setupUploadTestRouter(store *storage.MemoryTransferImageStore, maxSize int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	NewUploadHandler(store, maxSize).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestUploadHandler_UploadTransferImage(t *testing.T) {
	t.Run("stages a sniffed png", func(t *testing.T) {
		store := storage.NewMemoryTransferImageStore("staging", "transfer-images", 0)
		body, contentType := multipartBody(t, "file", "proof.png", append(pngHeader, make([]byte, 64)...))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/transfer-images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupUploadTestRouter(store, 1<<20).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Data dto.UploadResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Data.Key, "staging/"))
		assert.True(t, strings.HasSuffix(resp.Data.Key, ".png"))

		stored, ok := store.Get(resp.Data.Key)
		require.True(t, ok)
		assert.Equal(t, pngHeader, stored[:len(pngHeader)])
	})

	t.Run("missing file field", func(t *testing.T) {
		store := storage.NewMemoryTransferImageStore("staging", "transfer-images", 0)
		body, contentType := multipartBody(t, "other", "proof.png", pngHeader)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/transfer-images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupUploadTestRouter(store, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
	})

	t.Run("rejects non image content", func(t *testing.T) {
		store := storage.NewMemoryTransferImageStore("staging", "transfer-images", 0)
		body, contentType := multipartBody(t, "file", "notes.txt", []byte("plain text, not an image"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/transfer-images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupUploadTestRouter(store, 1<<20).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	})

	t.Run("enforces the upload limit", func(t *testing.T) {
		store := storage.NewMemoryTransferImageStore("staging", "transfer-images", 0)
		body, contentType := multipartBody(t, "file", "proof.png", append(pngHeader, make([]byte, 8192)...))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/transfer-images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupUploadTestRouter(store, 1024).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
	})
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestSystemHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(db Pinger) *gin.Engine {
		r := gin.New()
		h := NewSystemHandler(db, "shopdesk-backend", "test")
		h.RegisterRoutes(r)
		h.RegisterAPIRoutes(r.Group("/api/v1"))
		return r
	}

	t.Run("liveness never touches the database", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(stubPinger{err: errors.New("down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("ready when the database answers", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())
	})

	t.Run("not ready when the database is down", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(stubPinger{err: errors.New("down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unavailable","database":"down"}`, w.Body.String())
	})

	t.Run("system info", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data SystemInfoResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "shopdesk-backend", resp.Data.Name)
		assert.Equal(t, "test", resp.Data.Version)
	})
}
