package option

import (
	"time"

	"github.com/agentspace/agentspace/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption func(*gorm.DB) *gorm.DB

func (f QueryOption) Apply(stmt *gorm.DB) *gorm.DB {
	if f == nil {
		return stmt
	}
	return f(stmt)
}

// ApplyPagination applies cursor-based pagination. Listings order by
// (created_at desc, id desc); the cursor marks the last row of the
// previous page. One extra row is fetched to detect a next page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}
		if size > 250 {
			size = 250
		}

		if token := page.PageToken; token != "" {
			cursor, err := pagination.DecodeCursor(token)
			if err == nil && cursor != nil {
				if createdAt, parseErr := time.Parse(time.RFC3339, cursor.CreatedAt); parseErr == nil {
					stmt = stmt.Where(
						"created_at < ? OR (created_at = ? AND id < ?)",
						createdAt, createdAt, cursor.ID,
					)
				}
			}
		}

		return stmt.Limit(size + 1)
	}
}
