package orgcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestActorContext(t *testing.T) {
	t.Run("Empty context", func(t *testing.T) {
		_, ok := ActorFromContext(context.Background())
		assert.False(t, ok)
		_, ok = OrgIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("Actor sets org", func(t *testing.T) {
		ctx := WithActor(context.Background(), Actor{UserID: 7, OrgID: 42, Role: "ADMIN"})
		actor, ok := ActorFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, snowflake.ID(7), actor.UserID)

		orgID, ok := OrgIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, snowflake.ID(42), orgID)
	})

	t.Run("Org only", func(t *testing.T) {
		ctx := WithOrgID(context.Background(), 99)
		orgID, ok := OrgIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, snowflake.ID(99), orgID)
		_, ok = ActorFromContext(ctx)
		assert.False(t, ok)
	})
}
