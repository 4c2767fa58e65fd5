package core

import "context"

type contextKey string

const (
	ctxKeySession  contextKey = "session_token"
	ctxKeyClientIP contextKey = "client_ip"
)

// ContextWithSession attaches the caller's session token. Inventory gateways
// use it to scope catalog lookups to the current seller.
func ContextWithSession(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeySession, token)
}

// SessionFromContext extracts the session token, or "" if none was set.
func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySession).(string); ok {
		return v
	}
	return ""
}

// ContextWithClientIP adds the client IP to context for import logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext extracts the client IP.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
