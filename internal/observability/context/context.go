package context

import (
	"context"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
)

type requestIDKey struct{}

const (
	ActorTypeUser      = "user"
	ActorTypeAnonymous = "anonymous"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// OrgIDFromContext returns the tenant identifier as a log-friendly string.
func OrgIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return ""
	}
	return orgID.String()
}

// ActorFromContext reports who is acting on the request.
func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return ActorTypeAnonymous, ""
	}
	actor, ok := orgcontext.ActorFromContext(ctx)
	if !ok {
		return ActorTypeAnonymous, ""
	}
	return ActorTypeUser, actor.UserID.String()
}
