package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consulting_leads_backend/internal/auth/service"
	"consulting_leads_backend/platform/apperr"
	"consulting_leads_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type cookieConfig struct{}

func (cookieConfig) GetRefreshCookieName() string            { return "lead_refresh" }
func (cookieConfig) GetRefreshCookieDomain() string          { return "" }
func (cookieConfig) GetRefreshCookiePath() string            { return "/api/v1/auth" }
func (cookieConfig) GetRefreshCookieSecure() bool            { return true }
func (cookieConfig) GetRefreshCookieSameSite() http.SameSite { return http.SameSiteStrictMode }
func (cookieConfig) GetRefreshTokenTTL() time.Duration       { return time.Hour }

type stubAuth struct {
	signInErr  error
	refreshErr error
	signedOut  string
}

func (s *stubAuth) GetMe(_ context.Context, id uuid.UUID) (service.Profile, error) {
	return service.Profile{ID: id, Email: "ops@acme.com"}, nil
}

func (s *stubAuth) SignIn(context.Context, string, string) (string, string, error) {
	return "access", "refresh-1", s.signInErr
}

func (s *stubAuth) Refresh(context.Context, string) (string, string, error) {
	return "access-2", "refresh-2", s.refreshErr
}

func (s *stubAuth) SignOut(_ context.Context, token string) error {
	s.signedOut = token
	return nil
}

func newRouter(svc Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(svc, cookieConfig{}, validator.New()).RegisterRoutes(r.Group("/api/v1/auth"))
	return r
}

func TestSignInSetsHttpOnlyRefreshCookie(t *testing.T) {
	r := newRouter(&stubAuth{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", strings.NewReader(`{"email":"ops@acme.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "lead_refresh=refresh-1") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("cookie = %q", cookie)
	}
	if !strings.Contains(w.Body.String(), `"accessToken":"access"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSignInFailures(t *testing.T) {
	tests := []struct {
		name string
		svc  *stubAuth
		body string
		want int
	}{
		{"malformed", &stubAuth{}, `{`, http.StatusBadRequest},
		{"bad email", &stubAuth{}, `{"email":"nope","password":"x"}`, http.StatusBadRequest},
		{"wrong password", &stubAuth{signInErr: apperr.Unauthorized("invalid credentials")}, `{"email":"ops@acme.com","password":"x"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			newRouter(tt.svc).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRefreshRequiresCookie(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&stubAuth{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRefreshRotatesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "lead_refresh", Value: "refresh-1"})
	w := httptest.NewRecorder()
	newRouter(&stubAuth{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "lead_refresh=refresh-2") {
		t.Fatalf("cookie = %q", w.Header().Get("Set-Cookie"))
	}
}

func TestSignOutRevokesCookieToken(t *testing.T) {
	svc := &stubAuth{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "lead_refresh", Value: "refresh-1"})
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK || svc.signedOut != "refresh-1" {
		t.Fatalf("status = %d, signedOut = %q", w.Code, svc.signedOut)
	}
}
