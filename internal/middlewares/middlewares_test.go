package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chatimage/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name                string
		allowedOrigins      []string
		origin              string
		method              string
		expectedStatus      int
		expectedOrigin      string
		expectedCredentials string
	}{
		{
			name:           "wildcard origin",
			allowedOrigins: []string{"*"},
			origin:         "http://localhost:3000",
			method:         http.MethodPost,
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
		},
		{
			name:                "listed origin",
			allowedOrigins:      []string{"http://app.example.com"},
			origin:              "http://APP.example.com",
			method:              http.MethodPost,
			expectedStatus:      http.StatusOK,
			expectedOrigin:      "http://APP.example.com",
			expectedCredentials: "true",
		},
		{
			name:           "unlisted origin",
			allowedOrigins: []string{"http://app.example.com"},
			origin:         "http://evil.example.com",
			method:         http.MethodPost,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "preflight",
			allowedOrigins: []string{"*"},
			origin:         "http://localhost:3000",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "*",
		},
		{
			name:           "no origin header",
			allowedOrigins: []string{"*"},
			method:         http.MethodPost,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/login", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowedOrigins)(okHandler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
	})

	t.Run("replaces oversized client id", func(t *testing.T) {
		long := strings.Repeat("a", maxRequestIDLength+1)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", long)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEqual(t, long, seen)
		assert.NotEmpty(t, seen)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signup", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestWriteJSONError_EscapesMessage(t *testing.T) {
	message := `bad "input" \ <tag>`
	w := httptest.NewRecorder()

	writeJSONError(w, http.StatusBadRequest, message)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body models.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, message, body.Message)
}

func TestCORSMiddleware_VaryOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Origin", "http://app.example.com")
	w := httptest.NewRecorder()

	CORSMiddleware([]string{"http://app.example.com"})(okHandler).ServeHTTP(w, req)

	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(16)(okHandler)

	t.Run("small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("large body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"request body too large"}`, w.Body.String())
	})
}
