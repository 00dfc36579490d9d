package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"invoice-extraction-platform/internal/config"
)

func newAuthRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewAuthMiddleware(&config.Config{APIKey: apiKey})
	router.GET("/invoices", auth.RequireAPIKey(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireAPIKeyValid(t *testing.T) {
	router := newAuthRouter("chiave-segreta")

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req.Header.Set(APIKeyHeader, "chiave-segreta")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAPIKeyMissing(t *testing.T) {
	router := newAuthRouter("chiave-segreta")

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireAPIKeyWrong(t *testing.T) {
	router := newAuthRouter("chiave-segreta")

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req.Header.Set(APIKeyHeader, "sbagliata")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
