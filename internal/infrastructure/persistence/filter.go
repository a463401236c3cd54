package persistence

import (
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
)

// applyListOptions applies whitelist-validated ordering and pagination to a
// list query. Every repository FindAll goes through this so user-supplied sort
// fields can never reach the SQL string unchecked.
func applyListOptions(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedSortFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}
