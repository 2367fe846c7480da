package repository

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/option"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, org_id, name, phone, whatsapp, email, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.OrgID,
		client.Name,
		client.Phone,
		client.WhatsApp,
		client.Email,
		client.Address,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, phone, whatsapp, email, address, created_at, updated_at
		 FROM clients WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("org_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Phone != "" {
		stmt = stmt.Where("phone LIKE ?", "%"+filter.Phone+"%")
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE clients
		 SET name = ?, phone = ?, whatsapp = ?, email = ?, address = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		client.Name,
		client.Phone,
		client.WhatsApp,
		client.Email,
		client.Address,
		client.UpdatedAt,
		client.OrgID,
		client.ID,
	)
	return result.RowsAffected, result.Error
}
