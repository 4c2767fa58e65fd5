package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// WithRequestMetadata adds the caller's session token and IP to the context.
// The session is read from a bearer Authorization header or X-Session-Token.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	if token := sessionToken(r); token != "" {
		ctx = core.ContextWithSession(ctx, token)
	}
	return core.ContextWithClientIP(ctx, clientIP(r))
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}
