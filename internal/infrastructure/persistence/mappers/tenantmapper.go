package mappers

import (
	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/infrastructure/persistence/models"
)

type TenantMapper interface {
	ToEntity(model *models.TenantModel) *tenant.Tenant
	ToModel(entity *tenant.Tenant) *models.TenantModel
	ToEntities(models []*models.TenantModel) []*tenant.Tenant
}

type TenantMapperImpl struct{}

func NewTenantMapper() TenantMapper {
	return &TenantMapperImpl{}
}

func (m *TenantMapperImpl) ToEntity(model *models.TenantModel) *tenant.Tenant {
	if model == nil {
		return nil
	}
	return tenant.ReconstructTenant(model.TenantID, model.Name, model.OwnerUserID, model.CreatedAt)
}

func (m *TenantMapperImpl) ToModel(entity *tenant.Tenant) *models.TenantModel {
	if entity == nil {
		return nil
	}
	return &models.TenantModel{
		TenantID:    entity.ID(),
		Name:        entity.Name(),
		OwnerUserID: entity.OwnerUserID(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.CreatedAt(),
	}
}

func (m *TenantMapperImpl) ToEntities(models []*models.TenantModel) []*tenant.Tenant {
	out := make([]*tenant.Tenant, 0, len(models))
	for _, model := range models {
		out = append(out, m.ToEntity(model))
	}
	return out
}
