package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if got := resp.Header().Get("WWW-Authenticate"); got != bearerChallenge {
		t.Fatalf("expected bearer challenge, got %q", got)
	}
}

func TestAuthMiddleware_MalformedHeaders(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "owner")
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil)).Wrap(okHandler())

	for _, header := range []string{"Basic " + token, "Bearer", "Bearer   ", token, "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set("Authorization", header)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "bearer  "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected case-insensitive scheme to pass, got %d", resp.Code)
	}
}

func TestAuthMiddleware_NoSecretPassesThrough(t *testing.T) {
	handler := NewMiddleware(nil, NewDefaultPolicy(nil, nil)).Wrap(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ViewerForbiddenSalesPost(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "viewer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ViewerForbiddenImportAndDelete(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "viewer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/sales/import", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/sales/abc", nil),
	} {
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", req.Method, req.URL.Path, resp.Code)
		}
	}
}

func TestAuthMiddleware_ViewerCanExport(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "viewer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	var gotRole Role
	var gotSubject string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/export.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotRole != RoleViewer || gotSubject != "user-1" {
		t.Fatalf("unexpected identity %q %q", gotRole, gotSubject)
	}
}

func TestAuthMiddleware_OwnerAndExemptions(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "owner")
	mw := NewMiddleware(secret, NewDefaultPolicy([]string{"/healthz"}, []string{"/metrics"}))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/import", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", resp.Code)
	}

	for _, path := range []string{"/healthz", "/metrics", "/api/v1/orders/whatsapp"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 without token, got %d", path, resp.Code)
		}
	}
}

func TestParseJWT_RejectsUnknownRole(t *testing.T) {
	secret := []byte("test-secret")
	if _, err := ParseJWT(mustToken(t, secret, "admin"), secret); err == nil {
		t.Fatalf("expected invalid role error")
	}
	if _, err := ParseJWT(mustToken(t, secret, "owner"), []byte("other")); err == nil {
		t.Fatalf("expected signature error")
	}
}

func mustToken(t *testing.T, secret []byte, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
