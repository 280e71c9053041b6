package mappers

import (
	"fmt"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

// ToEntity keeps an unknown tier as-is; the state resolver falls back to
// the most restrictive plan for it.
func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status, err := subscription.ParseStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription status: %w", err)
	}
	cycle := subscription.BillingCycle(model.BillingCycle)
	if !cycle.IsValid() {
		cycle = subscription.BillingMonthly
	}

	return subscription.ReconstructSubscription(
		model.ID,
		model.TenantID,
		subscription.Tier(model.Tier),
		status,
		cycle,
		model.TrialEndsAt,
		model.CurrentPeriodEnd,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}
	return &models.SubscriptionModel{
		ID:               entity.ID(),
		TenantID:         entity.TenantID(),
		Tier:             entity.Tier().String(),
		Status:           entity.Status().String(),
		BillingCycle:     string(entity.BillingCycle()),
		TrialEndsAt:      entity.TrialEndsAt(),
		CurrentPeriodEnd: entity.CurrentPeriodEnd(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
	}
}

func (m *SubscriptionMapperImpl) ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	out := make([]*subscription.Subscription, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
