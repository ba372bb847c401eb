// Package requestcontext carries per-request values (correlation ID, caller
// identity, client metadata) through context so handlers and services do not
// reach back into the HTTP layer.
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerKey
	clientMetadataKey
	nowKey
)

// Caller is the authenticated subject of the current request as supplied by the
// upstream authentication layer. ID is the stable subject identifier; Admin and
// OrgUser are derived from role claims. A caller with neither flag is an
// external third-party identity.
type Caller struct {
	ID      string
	Admin   bool
	OrgUser bool
}

// ClientMetadata captures transport-level client details for audit events.
type ClientMetadata struct {
	IP        string
	UserAgent string
	Browser   string
}

// WithRequestID stores the correlation ID for the current request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCaller stores the authenticated caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the authenticated caller and whether one was set.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}

// WithClientMetadata stores transport-level client details.
func WithClientMetadata(ctx context.Context, m ClientMetadata) context.Context {
	return context.WithValue(ctx, clientMetadataKey, m)
}

// ClientMetadataFrom returns client details, or a zero value when unset.
func ClientMetadataFrom(ctx context.Context) ClientMetadata {
	if m, ok := ctx.Value(clientMetadataKey).(ClientMetadata); ok {
		return m
	}
	return ClientMetadata{}
}

// WithNow pins the request clock. Tests use this to make timestamps deterministic.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey, now)
}

// Now returns the pinned request clock, falling back to time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(nowKey).(time.Time); ok {
		return t
	}
	return time.Now()
}
