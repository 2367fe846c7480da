package option

import (
	"strconv"

	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a statement before execution.
type QueryOption interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type queryOptionFunc func(stmt *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination adds keyset conditions for (created_at, id) descending
// order and fetches one extra row so callers can detect a following page.
// Tokens must be validated by the caller; an undecodable token is ignored.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := pagination.NormalizeSize(page.PageSize)
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil {
				if createdAt, err := cursor.CursorTime(); err == nil {
					id := cursorID(cursor.ID)
					stmt = stmt.Where("(created_at < ? OR (created_at = ? AND id < ?))", createdAt, createdAt, id)
				}
			}
		}
		return stmt.Order("created_at desc, id desc").Limit(size + 1)
	})
}

// Snowflake keys are compared numerically, UUID keys as text.
func cursorID(raw string) any {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id
	}
	return raw
}
