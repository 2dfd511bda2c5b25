// Package identity turns a bearer credential into a verified caller
// identity and carries it through the request context.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned by every Verifier for a missing or invalid
// credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified caller. UID is the durable key; Email and
// DisplayName are point-in-time snapshots.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
}

// SnapshotName is the name recorded on memberships, comments and replies.
func (id Identity) SnapshotName() string {
	if strings.TrimSpace(id.DisplayName) != "" {
		return id.DisplayName
	}
	if strings.TrimSpace(id.Email) != "" {
		return id.Email
	}
	return "Unknown"
}

// Verifier checks the credential carried by r.
type Verifier interface {
	Verify(r *http.Request) (Identity, error)
}

type ctxIdentityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(ctxIdentityKey{})
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.UID != ""
}

// Middleware rejects requests the verifier refuses with 401 and installs
// the verified identity otherwise.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on a websocket handshake, so upgrades may pass ?access_token= instead.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			raw := r.URL.Query().Get("access_token")
			return raw, raw != ""
		}
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
