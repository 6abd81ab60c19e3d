package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

func newProtectedServer(tm *TokenManager, roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", tm.JWTMiddleware())
	if len(roles) > 0 {
		g.Use(RequireUserType(roles...))
	}
	g.GET("/me", func(c echo.Context) error {
		actor, err := ActorFromContext(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]string{"id": actor.ID.Hex(), "role": actor.Role})
	})
	return e
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Role: models.RoleVendor}
	token, err := tm.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}

	e := newProtectedServer(tm)
	if rec := get(e, "/api/me", token); rec.Code != http.StatusOK {
		t.Errorf("valid token: %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(e, "/api/me", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: %d", rec.Code)
	}

	other, _ := NewTokenManager("other-secret", time.Hour).IssueToken(user)
	if rec := get(e, "/api/me", other); rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign token: %d", rec.Code)
	}
}

func TestExpiredAndNonExpiringTokens(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{
		UserID:         primitive.NewObjectID().Hex(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})
	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{
		UserID: primitive.NewObjectID().Hex(),
	})

	for name, tok := range map[string]*jwt.Token{"expired": expired, "no expiry": noExpiry} {
		raw, _ := tok.SignedString([]byte(testSecret))
		if _, err := tm.ParseToken(raw); err == nil {
			t.Errorf("%s token should be rejected", name)
		}
	}
}

func TestUserIDFromToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	id := primitive.NewObjectID()
	token, _ := tm.GenerateJWT(id.Hex(), "ada@example.com", models.RoleUser)

	got, err := tm.UserIDFromToken(token)
	if err != nil || got != id {
		t.Errorf("got %v, %v", got, err)
	}
	if _, err := tm.UserIDFromToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestRequireUserType(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	e := newProtectedServer(tm, models.RoleAdmin)

	admin, _ := tm.GenerateJWT(primitive.NewObjectID().Hex(), "admin@example.com", models.RoleAdmin)
	buyer, _ := tm.GenerateJWT(primitive.NewObjectID().Hex(), "ada@example.com", models.RoleUser)

	if rec := get(e, "/api/me", admin); rec.Code != http.StatusOK {
		t.Errorf("admin: %d", rec.Code)
	}
	if rec := get(e, "/api/me", buyer); rec.Code != http.StatusForbidden {
		t.Errorf("buyer: %d", rec.Code)
	}
}

func TestRateLimiterBlocksStrictEndpoint(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.SetEndpointLimit("/api/auth/login", rate.Every(time.Minute), 2)

	e := echo.New()
	e.Use(rl.RateLimit())
	e.POST("/api/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do(http.MethodPost, "/api/auth/login"); code != http.StatusOK {
			t.Fatalf("attempt %d: %d", i+1, code)
		}
	}
	if code := do(http.MethodPost, "/api/auth/login"); code != http.StatusTooManyRequests {
		t.Errorf("third attempt: %d", code)
	}
	if code := do(http.MethodGet, "/api/products"); code != http.StatusOK {
		t.Errorf("browsing should not share the login bucket: %d", code)
	}

	now = now.Add(6 * time.Minute)
	if code := do(http.MethodPost, "/api/auth/login"); code != http.StatusOK {
		t.Errorf("after block expiry: %d", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(SecurityConfig{AllowedDomains: []string{"https://api.paystack.co"}, HSTS: true}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	h := rec.Header()
	if h.Get("X-Frame-Options") != "DENY" || h.Get("Strict-Transport-Security") == "" {
		t.Errorf("headers = %v", h)
	}
	if want := "connect-src 'self' https://api.paystack.co"; !strings.Contains(h.Get("Content-Security-Policy"), want) {
		t.Errorf("csp = %q", h.Get("Content-Security-Policy"))
	}
}
