package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"taskManager/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// TestRequestID тестирует генерацию и проброс идентификатора запроса
func TestRequestID(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

// TestLogging тестирует, что статус ответа не теряется обёрткой
func TestLogging(t *testing.T) {
	h := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("tea"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "tea", w.Body.String())
}

// TestLocalOnly тестирует отклонение нелокальных адресов
func TestLocalOnly(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		wantStatus int
	}{
		{"ipv4 loopback", "127.0.0.1:5000", http.StatusOK},
		{"ipv6 loopback", "[::1]:5000", http.StatusOK},
		{"remote", "192.0.2.1:1234", http.StatusForbidden},
		{"garbage", "not-an-ip", http.StatusForbidden},
	}

	h := middleware.LocalOnly(http.HandlerFunc(okHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "FORBIDDEN")
			}
		})
	}
}
