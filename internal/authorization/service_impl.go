package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectOrganization = "organization"
	ObjectClient       = "client"
	ObjectOrder        = "order"
	ObjectNotification = "notification"
	ObjectAuditLog     = "audit_log"
)

const (
	ActionOrganizationView = "organization.view"

	ActionClientView   = "client.view"
	ActionClientCreate = "client.create"
	ActionClientUpdate = "client.update"

	ActionOrderView      = "order.view"
	ActionOrderCreate    = "order.create"
	ActionOrderUpdate    = "order.update"
	ActionOrderStatus    = "order.status"
	ActionOrderQRReissue = "order.qrcode_reissue"
	ActionOrderPickup    = "order.pickup"

	ActionNotificationView = "notification.view"
	ActionNotificationSend = "notification.send"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

// Authorize checks the actor's membership role against the policy table.
// The role is the one resolved from organization_members at authentication.
func (s *ServiceImpl) Authorize(ctx context.Context, actor orgcontext.Actor, object string, action string) error {
	if actor.UserID == 0 {
		return ErrInvalidActor
	}
	if actor.OrgID == 0 {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}
	role := strings.ToLower(strings.TrimSpace(actor.Role))
	if role == "" {
		s.auditDenied(ctx, actor, object, action)
		return ErrForbidden
	}

	subject := fmt.Sprintf("user:%s", actor.UserID.String())
	domain := fmt.Sprintf("org:%s", actor.OrgID.String())
	if err := s.ensureGrouping(subject, "role:"+role, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("domain", domain),
			zap.String("action", action),
		)
		s.auditDenied(ctx, actor, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per subject and organization so
// a role change in organization_members takes effect on the next request.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor orgcontext.Actor, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	orgID := actor.OrgID
	actorID := actor.UserID.String()
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &orgID, "user", &actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"role":   actor.Role,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	counter := [][]string{
		{ObjectOrganization, ActionOrganizationView},
		{ObjectClient, ActionClientView},
		{ObjectClient, ActionClientCreate},
		{ObjectClient, ActionClientUpdate},
		{ObjectOrder, ActionOrderView},
		{ObjectOrder, ActionOrderCreate},
		{ObjectOrder, ActionOrderUpdate},
		{ObjectOrder, ActionOrderStatus},
		{ObjectOrder, ActionOrderPickup},
		{ObjectNotification, ActionNotificationView},
		{ObjectNotification, ActionNotificationSend},
	}
	management := [][]string{
		{ObjectOrder, ActionOrderQRReissue},
		{ObjectAuditLog, ActionAuditLogView},
	}

	var policies [][]string
	for _, role := range []string{"role:staff", "role:admin", "role:owner"} {
		for _, rule := range counter {
			policies = append(policies, []string{role, rule[0], rule[1]})
		}
	}
	for _, role := range []string{"role:admin", "role:owner"} {
		for _, rule := range management {
			policies = append(policies, []string{role, rule[0], rule[1]})
		}
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
