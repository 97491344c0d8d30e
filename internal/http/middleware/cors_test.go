package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/videos", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"default dev origin", nil, "http://localhost:5173", true},
		{"configured origin", []string{" https://app.example.com/ "}, "https://app.example.com", true},
		{"configured excludes dev", []string{"https://app.example.com"}, "http://localhost:5173", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.OPTIONS("/api/v1/videos", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			rec := preflight(r, tc.origin)
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("expected allow-origin %q, got %q (status %d)", tc.origin, got, rec.Code)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("expected origin %q to be rejected, got %q", tc.origin, got)
			}
		})
	}
}

func TestTraceContextHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("expected generated trace id")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "bad id with spaces")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got == "bad id with spaces" || got == "" {
		t.Fatalf("expected replaced request id, got %q", got)
	}
}
