package db

import "gorm.io/gorm"

// NotDeleted filters out soft-deleted rows for queries that bypass gorm's
// DeletedAt handling (Table(), raw Count()).
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NULL")
	}
}

// ForTenant scopes a query to one tenant.
func ForTenant(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
