package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/pkg/auth"
	"github.com/rs/zerolog"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("subject"))
	})
	return r
}

func do(r http.Handler, method, origin, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := newRouter(SecurityHeadersMiddleware(), CORSMiddleware([]string{"http://good.example"}, zerolog.Nop()))

	if w := do(r, http.MethodGet, "", ""); w.Code != http.StatusOK || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("no origin: %d %v", w.Code, w.Header())
	}
	w := do(r, http.MethodGet, "http://good.example", "")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "http://good.example" {
		t.Fatalf("allowed origin: %d %v", w.Code, w.Header())
	}
	if w := do(r, http.MethodGet, "http://evil.example", ""); w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin: %d", w.Code)
	}
	if w := do(r, http.MethodOptions, "http://good.example", ""); w.Code != http.StatusOK {
		t.Fatalf("preflight: %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware("s3cret"))
	token, err := auth.GenerateAPIToken("s3cret", "ci", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	w := do(r, http.MethodGet, "", "Bearer "+token)
	if w.Code != http.StatusOK || w.Body.String() != "ci" {
		t.Fatalf("valid token: %d %q", w.Code, w.Body.String())
	}

	for _, authz := range []string{"", "Basic abc", "Bearer ", "Bearer nope"} {
		if w := do(r, http.MethodGet, "", authz); w.Code != http.StatusUnauthorized {
			t.Fatalf("%q: got %d", authz, w.Code)
		}
	}
}
