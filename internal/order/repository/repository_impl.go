package repository

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/option"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const orderColumns = `id, org_id, client_id, order_number, description, kind, status,
	poids, quantite, prix_kg, montant_total, qr_code,
	date_livraison_prevue, date_retrait, picked_up_by, scanned_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrgID,
		order.ClientID,
		order.OrderNumber,
		order.Description,
		order.Kind,
		order.Status,
		order.Poids,
		order.Quantite,
		order.PrixKg,
		order.MontantTotal,
		order.QRCode,
		order.DateLivraisonPrevue,
		order.DateRetrait,
		order.PickedUpBy,
		order.ScannedAt,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID snowflake.ID, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, db, `SELECT `+orderColumns+` FROM orders WHERE org_id = ? AND id = ?`, orgID, id)
}

func (r *repo) FindByIDAnyOrg(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (*domain.Order, error) {
	return r.findOne(ctx, db, `SELECT `+orderColumns+` FROM orders WHERE org_id = ? AND order_number = ?`, orgID, number)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Order, error) {
	var order domain.Order
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, nil
	}
	return &order, nil
}

// OrderNumberExists looks across every organization: numbers are globally
// unique.
func (r *repo) OrderNumberExists(ctx context.Context, db *gorm.DB, number string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM orders WHERE order_number = ?`,
		number,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListOrderFilter, page pagination.Pagination) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("(LOWER(order_number) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// TransitionStatus applies the change only while the row is still in
// t.From. The affected row count is zero when another writer got there
// first.
func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, t domain.StatusTransition) (int64, error) {
	values := map[string]any{
		"status":     t.To,
		"updated_at": t.UpdatedAt,
	}
	if p := t.Pricing; p != nil {
		values["poids"] = p.Poids
		values["quantite"] = p.Quantite
		values["prix_kg"] = p.PrixKg
		values["montant_total"] = p.MontantTotal
	}
	if p := t.Pickup; p != nil {
		values["date_retrait"] = p.DateRetrait
		values["picked_up_by"] = int64(p.PickedUpBy)
		values["scanned_at"] = p.ScannedAt
	}

	result := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("org_id = ? AND id = ? AND status = ?", t.OrgID, t.OrderID, t.From).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateDetails(ctx context.Context, db *gorm.DB, u domain.DetailsUpdate) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET description = ?, poids = ?, quantite = ?, prix_kg = ?, montant_total = ?,
		     date_livraison_prevue = ?, updated_at = ?
		 WHERE org_id = ? AND id = ? AND status = ?`,
		u.Description,
		u.Pricing.Poids,
		u.Pricing.Quantite,
		u.Pricing.PrixKg,
		u.Pricing.MontantTotal,
		u.DateLivraisonPrevue,
		u.UpdatedAt,
		u.OrgID,
		u.OrderID,
		u.Expected,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateQRCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, id uuid.UUID, payload string, updatedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders SET qr_code = ?, updated_at = ?
		 WHERE org_id = ? AND id = ? AND status <> ?`,
		payload,
		updatedAt,
		orgID,
		id,
		domain.StatusRemis,
	)
	return result.RowsAffected, result.Error
}
