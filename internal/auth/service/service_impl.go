package service

import (
	"context"
	"crypto/rand"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/auth/password"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	orgdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	OrgSvc orgdomain.Service
	Clock  clock.Clock `optional:"true"`
}

type Service struct {
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	orgSvc orgdomain.Service
	clock  clock.Clock
	tokens *tokenIssuer
}

func New(p Params) (domain.Service, error) {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	log := p.Log.Named("auth.service")

	secret := []byte(p.Config.AuthJWTSecret)
	if len(secret) == 0 {
		if p.Config.IsProduction() {
			return nil, errors.New("AUTH_JWT_SECRET is required in production")
		}
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("AUTH_JWT_SECRET not set, using an ephemeral signing key")
	}

	ttl := p.Config.AuthTokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	issuer := p.Config.AppName
	if issuer == "" {
		issuer = "colis"
	}

	return &Service{
		log:    log,
		genID:  p.GenID,
		repo:   p.Repo,
		orgSvc: p.OrgSvc,
		clock:  clk,
		tokens: &tokenIssuer{secret: secret, issuer: issuer, ttl: ttl, now: clk.Now},
	}, nil
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(email)
	}
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	result := &domain.RegisterResult{User: user}
	if name := strings.TrimSpace(req.OrganizationName); name != "" {
		org, err := s.orgSvc.Create(ctx, user.ID, orgdomain.CreateOrganizationRequest{Name: name})
		if err != nil {
			return nil, err
		}
		result.OrganizationID = org.ID
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return result, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		s.log.Info("login refused", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	orgID, role, err := s.pickOrganization(ctx, user.ID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.issue(user.ID.String(), orgID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now

	return &domain.LoginResult{
		Token:          token,
		ExpiresAt:      expiresAt,
		User:           user,
		OrganizationID: orgID,
		Role:           role,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string, orgID string) (orgcontext.Actor, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return orgcontext.Actor{}, domain.ErrInvalidToken
	}
	parsed, err := s.tokens.parse(rawToken)
	if err != nil {
		return orgcontext.Actor{}, err
	}

	userID, err := snowflake.ParseString(parsed.Subject)
	if err != nil || userID == 0 {
		return orgcontext.Actor{}, domain.ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return orgcontext.Actor{}, err
	}
	if user == nil {
		return orgcontext.Actor{}, domain.ErrInvalidToken
	}

	actor := orgcontext.Actor{UserID: userID}

	rawOrg := strings.TrimSpace(orgID)
	if rawOrg == "" {
		rawOrg = parsed.OrgID
	}
	if rawOrg == "" {
		return actor, nil
	}
	parsedOrg, err := snowflake.ParseString(rawOrg)
	if err != nil || parsedOrg == 0 {
		return orgcontext.Actor{}, orgdomain.ErrInvalidOrganization
	}
	member, err := s.orgSvc.GetMembership(ctx, parsedOrg, userID)
	if err != nil {
		return orgcontext.Actor{}, err
	}

	actor.OrgID = member.OrgID
	actor.Role = member.Role
	return actor, nil
}

// pickOrganization returns the requested organization when the user belongs
// to it, or the first membership otherwise.
func (s *Service) pickOrganization(ctx context.Context, userID snowflake.ID, requested string) (string, string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		orgID, err := snowflake.ParseString(requested)
		if err != nil || orgID == 0 {
			return "", "", orgdomain.ErrInvalidOrganization
		}
		member, err := s.orgSvc.GetMembership(ctx, orgID, userID)
		if err != nil {
			return "", "", err
		}
		return member.OrgID.String(), member.Role, nil
	}

	orgs, err := s.orgSvc.ListOrganizationsByUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if len(orgs) == 0 {
		return "", "", nil
	}
	return orgs[0].ID, orgs[0].Role, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func defaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}
