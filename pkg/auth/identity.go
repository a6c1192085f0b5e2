package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"pagethread/pkg/config"
	"pagethread/pkg/logger"
	"pagethread/pkg/utils"
)

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend
	RoleBackend
	RoleAdmin
)

// SecConfig mirrors the security-related configuration used to drive
// authentication, CORS and rate limiting behavior.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	BackendKeys    map[string]struct{}
	FrontendKeys   map[string]struct{}
	AdminKeys      map[string]struct{}
}

type ctxAuthorKey struct{}

// Sign computes the signed-author signature for userID under key:
// hex(hmac-sha256(key, userID)). Clients send it as X-User-Signature.
func Sign(key, userID string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// RequireSignedAuthor verifies HMAC signature headers and injects the
// verified author id into the request context. Backend and admin
// callers may omit the signature entirely; handlers then accept the
// author from the X-User-ID header.
func RequireSignedAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Role-Name")
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		sig := strings.TrimSpace(r.Header.Get("X-User-Signature"))

		if (role == "backend" || role == "admin") && sig == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sig == "" || userID == "" {
			logger.Warn("missing_signature_headers", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "missing signature headers")
			return
		}

		keys := config.GetSigningKeys()
		if len(keys) == 0 {
			logger.Error("no_signing_keys_configured")
			utils.JSONError(w, http.StatusInternalServerError, "server misconfigured: no signing secrets available")
			return
		}

		ok := false
		for k := range keys {
			if hmac.Equal([]byte(Sign(k, userID)), []byte(sig)) {
				ok = true
				break
			}
		}
		if !ok {
			logger.Warn("invalid_signature", "user", userID)
			utils.JSONError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAuthorKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthorIDFromContext returns the signature-verified author id, if any.
func AuthorIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxAuthorKey{}).(string); ok {
		return v
	}
	return ""
}

// ResolveAuthor returns the acting author for a request. A verified
// signature is authoritative; a conflicting X-User-ID header is a 403.
// Without a signature, backend/admin callers may supply the author via
// header. The int return is an HTTP status (0 when resolution succeeds).
func ResolveAuthor(r *http.Request) (string, int, string) {
	if id := AuthorIDFromContext(r.Context()); id != "" {
		if h := strings.TrimSpace(r.Header.Get("X-User-ID")); h != "" && h != id {
			logger.Warn("author_mismatch_signature_header", "signature", id, "header", h, "path", r.URL.Path)
			return "", http.StatusForbidden, "author mismatch between signature and header"
		}
		return id, 0, ""
	}
	role := r.Header.Get("X-Role-Name")
	if role == "backend" || role == "admin" {
		h := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if h == "" {
			return "", http.StatusBadRequest, "author required"
		}
		if len(h) > 128 {
			return "", http.StatusBadRequest, "author too long"
		}
		return h, 0, ""
	}
	return "", http.StatusUnauthorized, "signature required"
}

// IsPrivileged reports whether the request carries backend or admin
// role, which bypasses ownership checks on delete.
func IsPrivileged(r *http.Request) bool {
	role := r.Header.Get("X-Role-Name")
	return role == "backend" || role == "admin"
}
