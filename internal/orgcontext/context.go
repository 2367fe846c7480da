package orgcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// ActorContextKey is the request context key for the authenticated actor.
type ActorContextKey struct{}

// Actor is the authenticated user acting inside one organization. OrgID is
// always resolved from a membership lookup, never from client input.
type Actor struct {
	UserID snowflake.ID
	OrgID  snowflake.ID
	Role   string
}

// WithOrgID stores the org ID in the context.
func WithOrgID(ctx context.Context, orgID int64) context.Context {
	return context.WithValue(ctx, OrgContextKey{}, orgID)
}

// OrgIDFromContext returns the org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	if actor, ok := ActorFromContext(ctx); ok && actor.OrgID != 0 {
		return actor.OrgID, true
	}

	value := ctx.Value(OrgContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), typed != 0
	case snowflake.ID:
		return typed, typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

// WithActor stores the authenticated actor and its organization.
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ActorContextKey{}, actor)
	return context.WithValue(ctx, OrgContextKey{}, int64(actor.OrgID))
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorContextKey{}).(Actor)
	if !ok || actor.UserID == 0 {
		return Actor{}, false
	}
	return actor, true
}
