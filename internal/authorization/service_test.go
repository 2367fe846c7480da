package authorization

import (
	"context"
	"testing"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorize(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	staff := orgcontext.Actor{UserID: 7, OrgID: 100, Role: "STAFF"}
	admin := orgcontext.Actor{UserID: 8, OrgID: 100, Role: "ADMIN"}

	t.Run("staff runs the counter", func(t *testing.T) {
		for _, action := range []string{ActionOrderCreate, ActionOrderStatus, ActionOrderPickup} {
			assert.NoError(t, svc.Authorize(ctx, staff, ObjectOrder, action), action)
		}
		assert.NoError(t, svc.Authorize(ctx, staff, ObjectNotification, ActionNotificationSend))
	})

	t.Run("staff cannot reissue credentials", func(t *testing.T) {
		err := svc.Authorize(ctx, staff, ObjectOrder, ActionOrderQRReissue)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})

	t.Run("admin can", func(t *testing.T) {
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectOrder, ActionOrderQRReissue))
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectAuditLog, ActionAuditLogView))
	})

	t.Run("role change applies immediately", func(t *testing.T) {
		promoted := staff
		promoted.Role = "OWNER"
		assert.NoError(t, svc.Authorize(ctx, promoted, ObjectOrder, ActionOrderQRReissue))
		assert.ErrorIs(t, svc.Authorize(ctx, staff, ObjectOrder, ActionOrderQRReissue), ErrForbidden)
	})

	t.Run("roles are scoped per organization", func(t *testing.T) {
		elsewhere := orgcontext.Actor{UserID: 8, OrgID: 200, Role: "STAFF"}
		assert.ErrorIs(t, svc.Authorize(ctx, elsewhere, ObjectOrder, ActionOrderQRReissue), ErrForbidden)
		assert.NoError(t, svc.Authorize(ctx, admin, ObjectOrder, ActionOrderQRReissue))
	})

	t.Run("rejects incomplete requests", func(t *testing.T) {
		assert.ErrorIs(t, svc.Authorize(ctx, orgcontext.Actor{}, ObjectOrder, ActionOrderView), ErrInvalidActor)
		assert.ErrorIs(t, svc.Authorize(ctx, orgcontext.Actor{UserID: 1}, ObjectOrder, ActionOrderView), ErrInvalidOrganization)
		assert.ErrorIs(t, svc.Authorize(ctx, staff, " ", ActionOrderView), ErrInvalidObject)
		assert.ErrorIs(t, svc.Authorize(ctx, orgcontext.Actor{UserID: 1, OrgID: 100}, ObjectOrder, ActionOrderView), ErrForbidden)
	})
}

func TestSeedPoliciesIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	first, err := NewEnforcer(db)
	require.NoError(t, err)
	before, err := first.GetPolicy()
	require.NoError(t, err)

	second, err := NewEnforcer(db)
	require.NoError(t, err)
	after, err := second.GetPolicy()
	require.NoError(t, err)

	assert.Len(t, after, len(before))
}
