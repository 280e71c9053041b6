package subscription

import (
	"context"
	"time"
)

// Repository persists one subscription per tenant.
type Repository interface {
	// GetByTenant returns (nil, nil) when the tenant has no subscription.
	GetByTenant(ctx context.Context, tenantID string) (*Subscription, error)
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	ListTrialsEndingBefore(ctx context.Context, t time.Time, limit int) ([]*Subscription, error)
}

// UsageReader reads the counters written by feature modules.
type UsageReader interface {
	// GetUsage returns zero usage for a tenant with no counters yet.
	GetUsage(ctx context.Context, tenantID string) (Usage, error)
}
