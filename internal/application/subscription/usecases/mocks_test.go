package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
)

type mockSubscriptionRepository struct {
	GetByTenantFunc            func(ctx context.Context, tenantID string) (*subscription.Subscription, error)
	CreateFunc                 func(ctx context.Context, sub *subscription.Subscription) error
	UpdateFunc                 func(ctx context.Context, sub *subscription.Subscription) error
	ListTrialsEndingBeforeFunc func(ctx context.Context, t time.Time, limit int) ([]*subscription.Subscription, error)
}

func (m *mockSubscriptionRepository) GetByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	if m.GetByTenantFunc != nil {
		return m.GetByTenantFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sub)
	}
	return nil
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, sub)
	}
	return nil
}

func (m *mockSubscriptionRepository) ListTrialsEndingBefore(ctx context.Context, t time.Time, limit int) ([]*subscription.Subscription, error) {
	if m.ListTrialsEndingBeforeFunc != nil {
		return m.ListTrialsEndingBeforeFunc(ctx, t, limit)
	}
	return nil, nil
}

type mockInvalidator struct{ tenants []string }

func (m *mockInvalidator) Invalidate(_ context.Context, tenantID string) {
	m.tenants = append(m.tenants, tenantID)
}

type mockPublisher struct{ events []events.ChangeEvent }

func (m *mockPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	m.events = append(m.events, ev)
	return nil
}
