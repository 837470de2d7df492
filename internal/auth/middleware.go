package auth

import (
	"net/http"
	"strings"
)

const bearerChallenge = `Bearer realm="kunafa-ledger"`

// Middleware checks bearer tokens against the route policy and attaches the
// caller's identity to accepted requests.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Wrap applies the policy to next. A middleware without a secret lets every
// request through.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil || len(m.Secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		required, guarded := m.requiredRole(r)
		if !guarded {
			next.ServeHTTP(w, r)
			return
		}

		token, found := bearerToken(r.Header.Get("Authorization"))
		if !found {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), role, claims.Subject)))
	})
}

func (m *Middleware) requiredRole(r *http.Request) (Role, bool) {
	if m.Policy.IsExempt(r) {
		return "", false
	}
	return m.Policy.RequiredRole(r)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", bearerChallenge)
	http.Error(w, msg, http.StatusUnauthorized)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
