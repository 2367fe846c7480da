package service

import (
	"context"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/auth/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	orgdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	orgrepository "github.com/Falloukarim/colis-sn-sub000/internal/organization/repository"
	orgservice "github.com/Falloukarim/colis-sn-sub000/internal/organization/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	orgSvc orgdomain.Service
	svc    domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &orgdomain.Organization{}, &orgdomain.OrganizationMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))

	orgSvc := orgservice.NewService(orgservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  orgrepository.NewRepository(db),
		Clock: clk,
	})
	svc, err := New(Params{
		Config: config.Config{AppName: "colis", AuthJWTSecret: "test-secret", AuthTokenTTL: time.Hour},
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.New(db),
		OrgSvc: orgSvc,
		Clock:  clk,
	})
	require.NoError(t, err)

	return &fixture{db: db, node: node, clock: clk, orgSvc: orgSvc, svc: svc}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, domain.RegisterRequest{
		Email:            " Fatou@Colis.SN ",
		Password:         "motdepasse",
		OrganizationName: "Colis Dakar",
	})
	require.NoError(t, err)
	assert.Equal(t, "fatou@colis.sn", registered.User.Email)
	assert.Equal(t, "fatou", registered.User.DisplayName)
	require.NotEmpty(t, registered.OrganizationID)

	_, err = f.svc.Register(ctx, domain.RegisterRequest{Email: "fatou@colis.sn", Password: "motdepasse"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	login, err := f.svc.Login(ctx, domain.LoginRequest{Email: "fatou@colis.sn", Password: "motdepasse"})
	require.NoError(t, err)
	assert.Equal(t, registered.OrganizationID, login.OrganizationID)
	assert.Equal(t, orgdomain.RoleOwner, login.Role)
	assert.Equal(t, f.clock.Now().Add(time.Hour), login.ExpiresAt)

	actor, err := f.svc.Authenticate(ctx, login.Token, "")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, actor.UserID)
	assert.Equal(t, registered.OrganizationID, actor.OrgID.String())
	assert.Equal(t, orgdomain.RoleOwner, actor.Role)

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "fatou@colis.sn", Password: "autre-chose"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "personne@colis.sn", Password: "motdepasse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, domain.RegisterRequest{Email: "pas-un-email", Password: "motdepasse"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Register(ctx, domain.RegisterRequest{Email: "a@b.sn", Password: "court"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, err := f.svc.Register(ctx, domain.RegisterRequest{Email: "owner@colis.sn", Password: "motdepasse", OrganizationName: "Colis Dakar"})
	require.NoError(t, err)
	other, err := f.svc.Register(ctx, domain.RegisterRequest{Email: "other@colis.sn", Password: "motdepasse", OrganizationName: "Colis Thiès"})
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, domain.LoginRequest{Email: "owner@colis.sn", Password: "motdepasse"})
	require.NoError(t, err)

	t.Run("organization header must match a membership", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, login.Token, other.OrganizationID)
		assert.ErrorIs(t, err, orgdomain.ErrNotMember)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

		actor, err := f.svc.Authenticate(ctx, login.Token, owner.OrganizationID)
		require.NoError(t, err)
		assert.Equal(t, owner.OrganizationID, actor.OrgID.String())
	})

	t.Run("user without organization", func(t *testing.T) {
		_, err := f.svc.Register(ctx, domain.RegisterRequest{Email: "solo@colis.sn", Password: "motdepasse"})
		require.NoError(t, err)
		solo, err := f.svc.Login(ctx, domain.LoginRequest{Email: "solo@colis.sn", Password: "motdepasse"})
		require.NoError(t, err)
		assert.Empty(t, solo.OrganizationID)

		actor, err := f.svc.Authenticate(ctx, solo.Token, "")
		require.NoError(t, err)
		assert.NotZero(t, actor.UserID)
		assert.Zero(t, actor.OrgID)
	})

	t.Run("tampered and foreign tokens", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, login.Token+"x", "")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)

		_, err = f.svc.Authenticate(ctx, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)

		foreign := &tokenIssuer{secret: []byte("other-secret"), issuer: "colis", ttl: time.Hour, now: f.clock.Now}
		raw, _, err := foreign.issue(owner.User.ID.String(), owner.OrganizationID)
		require.NoError(t, err)
		_, err = f.svc.Authenticate(ctx, raw, "")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f.clock.Advance(2 * time.Hour)
		_, err := f.svc.Authenticate(ctx, login.Token, "")
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})
}

func TestNewRequiresSecretInProduction(t *testing.T) {
	_, err := New(Params{
		Config: config.Config{Environment: "production"},
		Log:    zap.NewNop(),
	})
	assert.Error(t, err)
}
