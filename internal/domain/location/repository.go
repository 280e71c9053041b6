package location

import (
	"context"
	"time"
)

// Repository stores locations. Get returns (nil, nil) for an unknown id.
type Repository interface {
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	Delete(ctx context.Context, tenantID, locationID string) error
	Get(ctx context.Context, tenantID, locationID string) (*Location, error)
	// ListByTenant returns locations ordered by creation time.
	ListByTenant(ctx context.Context, tenantID string) ([]*Location, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

// RecordKind names a set of per-location records removed with the location.
type RecordKind string

const (
	RecordLocation   RecordKind = "location"
	RecordUsageStats RecordKind = "usage_stats"
	RecordInventory  RecordKind = "inventory"
	RecordAnalytics  RecordKind = "analytics"
)

// DependentRecords are deleted together with a location, in this order.
var DependentRecords = []RecordKind{RecordUsageStats, RecordInventory, RecordAnalytics}

// DataRepository deletes and counts the records that hang off a location.
// Deletes are idempotent.
type DataRepository interface {
	DeleteRecords(ctx context.Context, tenantID, locationID string, kind RecordKind) error
	CountRecords(ctx context.Context, tenantID, locationID string, kind RecordKind) (int64, error)
}

type BranchRepository interface {
	// Upsert writes the projection, keeping any stored stats.
	Upsert(ctx context.Context, b *Branch) error
	SoftDelete(ctx context.Context, tenantID, branchID string, at time.Time) error
	Get(ctx context.Context, tenantID, branchID string) (*Branch, error)
	ListByTenant(ctx context.Context, tenantID string, includeDeleted bool) ([]*Branch, error)
}
