package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	auditrepository "github.com/Falloukarim/colis-sn-sub000/internal/audit/repository"
	auditservice "github.com/Falloukarim/colis-sn-sub000/internal/audit/service"
	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	clientrepository "github.com/Falloukarim/colis-sn-sub000/internal/client/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/sender/mock"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	orderrepository "github.com/Falloukarim/colis-sn-sub000/internal/order/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	orgID      = snowflake.ID(100)
	otherOrgID = snowflake.ID(200)
)

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	sender *mock.MockSender
	svc    domain.Service
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&orderdomain.Order{},
		&domain.Notification{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	ctrl := gomock.NewController(t)
	sender := mock.NewMockSender(ctrl)

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
		Clock: clk,
	})

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		OrderRepo:  orderrepository.Provide(),
		ClientRepo: clientrepository.Provide(),
		Sender:     sender,
		Issuer:     qrcode.NewIssuer(config.Config{PublicBaseURL: "https://colis.sn"}),
		AuditSvc:   audit,
		Clock:      clk,
	})

	return &fixture{
		db:     db,
		node:   node,
		clock:  clk,
		sender: sender,
		svc:    svc,
		ctx:    orgcontext.WithActor(context.Background(), orgcontext.Actor{UserID: 7, OrgID: orgID, Role: "STAFF"}),
	}
}

func (f *fixture) client(t *testing.T, org snowflake.ID, whatsapp, email string) clientdomain.Client {
	t.Helper()
	c := clientdomain.Client{
		ID:        f.node.Generate(),
		OrgID:     org,
		Name:      "Awa Ndiaye",
		Phone:     "+221771234567",
		WhatsApp:  whatsapp,
		Email:     email,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, clientrepository.Provide().Insert(context.Background(), f.db, &c))
	return c
}

func (f *fixture) order(t *testing.T, client clientdomain.Client) orderdomain.Order {
	t.Helper()
	qty := int64(2)
	o := orderdomain.Order{
		ID:           uuid.New(),
		OrgID:        client.OrgID,
		ClientID:     client.ID,
		OrderNumber:  "SN-250201-" + uuid.NewString()[:6] + "-TEST",
		Description:  "Livraison Dakar",
		Kind:         pricing.KindService,
		Status:       orderdomain.StatusDisponible,
		Quantite:     &qty,
		PrixKg:       decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		MontantTotal: decimal.NewFromInt(20000),
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, orderrepository.Provide().Insert(context.Background(), f.db, &o))
	return o
}

func (f *fixture) history(t *testing.T, orderID uuid.UUID) []domain.Notification {
	t.Helper()
	var items []domain.Notification
	require.NoError(t, f.db.Where("order_id = ?", orderID).Order("id").Find(&items).Error)
	return items
}

func TestNotifyReady(t *testing.T) {
	f := newFixture(t)

	t.Run("prefers whatsapp", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "+221781112233", ""))
		f.sender.EXPECT().
			Send(gomock.Any(), domain.ChannelWhatsApp, "+221781112233", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Channel, _ string, message string) (bool, error) {
				assert.Contains(t, message, "2 x 10 000 FCFA = 20 000 FCFA")
				assert.Contains(t, message, "https://colis.sn/qr/public/"+order.ID.String())
				return true, nil
			})

		require.NoError(t, f.svc.NotifyReady(f.ctx, order))

		items := f.history(t, order.ID)
		require.Len(t, items, 1)
		assert.Equal(t, domain.StatusSent, items[0].Status)
		assert.Equal(t, domain.ChannelWhatsApp, items[0].Channel)
		assert.Nil(t, items[0].Error)
		assert.Contains(t, items[0].Message, "Bonjour Awa")
	})

	t.Run("falls back to sms", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, "+221771234567", gomock.Any()).Return(true, nil)

		require.NoError(t, f.svc.NotifyReady(f.ctx, order))
		items := f.history(t, order.ID)
		require.Len(t, items, 1)
		assert.Equal(t, domain.ChannelSMS, items[0].Channel)
	})

	t.Run("send failure is recorded, not returned", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, gomock.Any(), gomock.Any()).
			Return(false, errors.New("gateway timeout"))

		require.NoError(t, f.svc.NotifyReady(f.ctx, order))
		items := f.history(t, order.ID)
		require.Len(t, items, 1)
		assert.Equal(t, domain.StatusFailed, items[0].Status)
		require.NotNil(t, items[0].Error)
		assert.Equal(t, "gateway timeout", *items[0].Error)
	})

	t.Run("refused send is failed", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		require.NoError(t, f.svc.NotifyReady(f.ctx, order))
		items := f.history(t, order.ID)
		require.Len(t, items, 1)
		assert.Equal(t, domain.StatusFailed, items[0].Status)
		assert.Equal(t, domain.ReasonRejected, *items[0].Error)
	})

	t.Run("attempt is recorded after the caller is gone", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		ctx, cancel := context.WithCancel(f.ctx)
		f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Channel, string, string) (bool, error) {
				cancel()
				return false, context.Canceled
			})

		require.NoError(t, f.svc.NotifyReady(ctx, order))
		assert.Len(t, f.history(t, order.ID), 1)
	})

	t.Run("request already cancelled", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		ctx, cancel := context.WithCancel(f.ctx)
		cancel()
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, "+221771234567", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ domain.Channel, _ string, _ string) (bool, error) {
				return false, ctx.Err()
			})

		require.NoError(t, f.svc.NotifyReady(ctx, order))
		items := f.history(t, order.ID)
		require.Len(t, items, 1)
		assert.Equal(t, domain.StatusFailed, items[0].Status)
		assert.Contains(t, items[0].Message, "Bonjour Awa")
	})
}

func TestNotifyReady_ClientLookupFailure(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, f.client(t, orgID, "", ""))
	require.NoError(t, f.db.Migrator().DropTable(&clientdomain.Client{}))

	require.NoError(t, f.svc.NotifyReady(f.ctx, order))

	items := f.history(t, order.ID)
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusFailed, items[0].Status)
	assert.Equal(t, domain.ChannelSMS, items[0].Channel)
	require.NotNil(t, items[0].Error)
	assert.Equal(t, domain.ReasonClientLookupFailed, *items[0].Error)
	assert.Contains(t, items[0].Message, order.OrderNumber)
}

func TestNotifyReady_LegacyOrderWithoutKind(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, f.client(t, orgID, "", ""))
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Where("id = ?", order.ID).Update("kind", "").Error)
	order.Kind = ""

	f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, gomock.Any(), gomock.Any()).Return(true, nil)
	require.NoError(t, f.svc.NotifyReady(f.ctx, order))

	items := f.history(t, order.ID)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "Montant : 2 x 10 000 FCFA = 20 000 FCFA")
}

func TestNotify_Email(t *testing.T) {
	f := newFixture(t)

	t.Run("missing address fails without sending", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))

		result, err := f.svc.Notify(f.ctx, order, domain.ChannelEmail)
		require.NoError(t, err)
		assert.False(t, result.Sent)
		assert.Equal(t, domain.ReasonMissingDestination, *result.Notification.Error)
		assert.Len(t, f.history(t, order.ID), 1)
	})

	t.Run("no provider configured", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", "awa@example.sn"))
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelEmail, "awa@example.sn", gomock.Any()).
			Return(false, domain.ErrProviderNotConfigured)

		result, err := f.svc.Notify(f.ctx, order, domain.ChannelEmail)
		require.NoError(t, err)
		assert.False(t, result.Sent)
		assert.Equal(t, domain.StatusFailed, result.Notification.Status)
		assert.Equal(t, domain.ReasonProviderNotConfigured, *result.Notification.Error)
	})

	t.Run("unknown channel", func(t *testing.T) {
		order := f.order(t, f.client(t, orgID, "", ""))
		_, err := f.svc.Notify(f.ctx, order, domain.Channel("fax"))
		assert.ErrorIs(t, err, domain.ErrInvalidChannel)
		assert.Empty(t, f.history(t, order.ID))
	})
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, f.client(t, orgID, "", "awa@example.sn"))

	f.sender.EXPECT().Send(gomock.Any(), domain.ChannelEmail, "awa@example.sn", gomock.Any()).Return(true, nil)
	result, err := f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: order.ID.String(), Channel: "EMAIL"})
	require.NoError(t, err)
	assert.True(t, result.Sent)

	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", auditdomain.ActionNotificationSend).Find(&logs).Error)
	assert.Len(t, logs, 1)

	_, err = f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: order.ID.String(), Channel: "pigeon"})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)

	_, err = f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: "nope", Channel: "sms"})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidID)

	_, err = f.svc.Dispatch(context.Background(), domain.DispatchRequest{OrderID: order.ID.String(), Channel: "sms"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	foreign := f.order(t, f.client(t, otherOrgID, "", ""))
	_, err = f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: foreign.ID.String(), Channel: "sms"})
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}

func TestListByOrder(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, f.client(t, orgID, "", ""))

	empty, err := f.svc.ListByOrder(f.ctx, order.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	gomock.InOrder(
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, gomock.Any(), gomock.Any()).Return(false, nil),
		f.sender.EXPECT().Send(gomock.Any(), domain.ChannelSMS, gomock.Any(), gomock.Any()).Return(true, nil),
	)
	_, err = f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: order.ID.String(), Channel: "sms"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Dispatch(f.ctx, domain.DispatchRequest{OrderID: order.ID.String(), Channel: "sms"})
	require.NoError(t, err)

	items, err := f.svc.ListByOrder(f.ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.StatusFailed, items[0].Status)
	assert.Equal(t, domain.StatusSent, items[1].Status)

	other := orgcontext.WithActor(context.Background(), orgcontext.Actor{UserID: 9, OrgID: otherOrgID, Role: "STAFF"})
	_, err = f.svc.ListByOrder(other, order.ID.String())
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}
