package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/auth/password"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	organizationdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const defaultAdminDisplay = "Administrateur"

// EnsureOrgAndAdmin seeds an active organization and its owner account so a
// fresh local install can log in right away. Existing rows are left alone.
func EnsureOrgAndAdmin(db *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return errors.New("bootstrap admin email and password are required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node, cfg.OrgName)
		if err != nil {
			return err
		}

		var user authdomain.User
		err = tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(cfg.AdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate(),
				Email:        email,
				DisplayName:  defaultAdminDisplay,
				PasswordHash: hashed,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member organizationdomain.OrganizationMember
		err = tx.WithContext(ctx).
			Where("org_id = ? AND user_id = ?", org.ID, user.ID).
			First(&member).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			member = organizationdomain.OrganizationMember{
				ID:        node.Generate(),
				OrgID:     org.ID,
				UserID:    user.ID,
				Role:      organizationdomain.RoleOwner,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (organizationdomain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Colis"
	}
	orgSlug := slug.Make(name)

	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", orgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}
	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:                 node.Generate(),
		Name:               name,
		Slug:               orgSlug,
		SubscriptionStatus: organizationdomain.SubscriptionActive,
		Metadata:           map[string]any{"bootstrap": true},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}
