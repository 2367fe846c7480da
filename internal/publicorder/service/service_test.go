package service

import (
	"context"
	"testing"
	"time"

	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	orgdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	publicorderdomain "github.com/Falloukarim/colis-sn-sub000/internal/publicorder/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/publicorder/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orgdomain.Organization{}, &clientdomain.Client{}, &orderdomain.Order{}))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status orderdomain.Status, pickedUp *time.Time) orderdomain.Order {
	t.Helper()
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	org := orgdomain.Organization{
		ID:                 snowflake.ID(10),
		Name:               "Boutique Médina",
		Slug:               "boutique-medina",
		SubscriptionStatus: orgdomain.SubscriptionActive,
		Metadata:           datatypes.JSONMap{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, db.FirstOrCreate(&org).Error)
	client := clientdomain.Client{ID: snowflake.ID(20), OrgID: org.ID, Name: "Awa Ndiaye", Phone: "771234567", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.FirstOrCreate(&client).Error)

	order := orderdomain.Order{
		ID:           uuid.New(),
		OrgID:        org.ID,
		ClientID:     client.ID,
		OrderNumber:  "SN-250510-" + uuid.NewString()[:6],
		Description:  "Sac de riz",
		Kind:         pricing.KindProduct,
		Status:       status,
		Poids:        decimal.NewNullDecimal(decimal.NewFromInt(25)),
		PrixKg:       decimal.NewNullDecimal(decimal.NewFromInt(500)),
		MontantTotal: decimal.NewFromInt(12500),
		DateRetrait:  pickedUp,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestGetOrderForPublicView(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	ctx := context.Background()

	t.Run("shows minimal status only", func(t *testing.T) {
		order := seedOrder(t, db, orderdomain.StatusDisponible, nil)

		view, err := svc.GetOrderForPublicView(ctx, order.ID.String())
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, view.OrderNumber)
		assert.Equal(t, "disponible", view.Status)
		assert.Equal(t, "Disponible", view.StatusLabel)
		assert.Equal(t, "Awa", view.ClientFirstName)
		assert.Equal(t, "Boutique Médina", view.Organization)
		assert.Nil(t, view.DateRetrait)
	})

	t.Run("accepts the scanned URL and reports the pickup date", func(t *testing.T) {
		picked := time.Date(2025, 5, 11, 16, 30, 0, 0, time.UTC)
		order := seedOrder(t, db, orderdomain.StatusRemis, &picked)

		view, err := svc.GetOrderForPublicView(ctx, "https://colis.sn"+qrcode.PublicPath+order.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "remis", view.Status)
		require.NotNil(t, view.DateRetrait)
		assert.True(t, picked.Equal(*view.DateRetrait))
	})

	t.Run("unknown and malformed ids are unavailable", func(t *testing.T) {
		_, err := svc.GetOrderForPublicView(ctx, uuid.NewString())
		assert.ErrorIs(t, err, publicorderdomain.ErrOrderUnavailable)

		_, err = svc.GetOrderForPublicView(ctx, "not-an-order")
		assert.ErrorIs(t, err, publicorderdomain.ErrOrderUnavailable)
	})
}
