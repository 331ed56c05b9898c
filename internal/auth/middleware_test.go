package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newAuthEngine() (*gin.Engine, *TokenService) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokenService("test-secret", time.Hour)
	h := &Handlers{Store: NewStore(), Tokens: tokens}

	r := gin.New()
	r.Use(sessions.Sessions("SignalingSessions", cookie.NewStore([]byte("test-secret"))))
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	authorized := r.Group("", Middleware(tokens))
	authorized.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(IdentityKey))
	})
	return r, tokens
}

func TestMiddleware_BearerHeader(t *testing.T) {
	r, tokens := newAuthEngine()

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Fatalf("whoami = (%d, %q), want (200, alice)", w.Code, w.Body.String())
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	r, _ := newAuthEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// Login stores the token in the cookie session; the middleware accepts it
// when neither a bearer header nor a token query parameter is supplied.
func TestMiddleware_CookieSessionFallback(t *testing.T) {
	r, _ := newAuthEngine()

	register := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"alice","password":"hunter22"}`))
	register.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, register)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("register set no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Fatalf("whoami via cookie = (%d, %q), want (200, alice)", w.Code, w.Body.String())
	}
}
