package mappers

import (
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/infrastructure/persistence/models"
)

type BranchMapper interface {
	ToEntity(model *models.BranchModel) *location.Branch
	ToModel(entity *location.Branch) *models.BranchModel
	ToEntities(models []*models.BranchModel) []*location.Branch
}

type BranchMapperImpl struct{}

func NewBranchMapper() BranchMapper {
	return &BranchMapperImpl{}
}

func (m *BranchMapperImpl) ToEntity(model *models.BranchModel) *location.Branch {
	if model == nil {
		return nil
	}
	b := &location.Branch{
		ID:         model.BranchID,
		LocationID: model.LocationID,
		TenantID:   model.TenantID,
		Name:       model.Name,
		Address:    model.Address,
		Phone:      model.Phone,
		Manager:    model.Manager,
		IsMain:     model.IsMain,
		Stats: location.BranchStats{
			SalesCents:   model.SalesCents,
			OrderCount:   model.OrderCount,
			ProductCount: model.ProductCount,
		},
		UpdatedAt: model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		at := model.DeletedAt.Time
		b.Deleted = true
		b.DeletedAt = &at
	}
	return b
}

// ToModel leaves the stats columns zero; the repository never overwrites
// stored stats from a projection.
func (m *BranchMapperImpl) ToModel(entity *location.Branch) *models.BranchModel {
	if entity == nil {
		return nil
	}
	updated := entity.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return &models.BranchModel{
		BranchID:   entity.ID,
		LocationID: entity.LocationID,
		TenantID:   entity.TenantID,
		Name:       entity.Name,
		Address:    entity.Address,
		Phone:      entity.Phone,
		Manager:    entity.Manager,
		IsMain:     entity.IsMain,
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}
}

func (m *BranchMapperImpl) ToEntities(models []*models.BranchModel) []*location.Branch {
	out := make([]*location.Branch, 0, len(models))
	for _, model := range models {
		out = append(out, m.ToEntity(model))
	}
	return out
}
