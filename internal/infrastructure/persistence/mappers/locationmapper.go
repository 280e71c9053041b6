package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/infrastructure/persistence/models"
)

type LocationMapper interface {
	ToEntity(model *models.LocationModel) (*location.Location, error)
	ToModel(entity *location.Location) (*models.LocationModel, error)
	ToEntities(models []*models.LocationModel) ([]*location.Location, error)
}

type LocationMapperImpl struct{}

func NewLocationMapper() LocationMapper {
	return &LocationMapperImpl{}
}

func (m *LocationMapperImpl) ToEntity(model *models.LocationModel) (*location.Location, error) {
	if model == nil {
		return nil, nil
	}

	locType := location.Type(model.Type)
	if !locType.IsValid() {
		return nil, fmt.Errorf("invalid location type: %s", model.Type)
	}
	status := location.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid location status: %s", model.Status)
	}

	var settings location.Settings
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal location settings: %w", err)
		}
	}

	return location.ReconstructLocation(
		model.LocationID,
		model.TenantID,
		model.Name,
		locType,
		location.Address{
			Street:     model.Street,
			City:       model.City,
			State:      model.State,
			PostalCode: model.PostalCode,
			Country:    model.Country,
		},
		location.Contact{
			Phone:   model.Phone,
			Email:   model.ContactEmail,
			Manager: model.Manager,
		},
		settings,
		status,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (m *LocationMapperImpl) ToModel(entity *location.Location) (*models.LocationModel, error) {
	if entity == nil {
		return nil, nil
	}

	settings, err := json.Marshal(entity.Settings())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location settings: %w", err)
	}

	addr := entity.Address()
	contact := entity.Contact()
	return &models.LocationModel{
		LocationID:   entity.ID(),
		TenantID:     entity.TenantID(),
		Name:         entity.Name(),
		Type:         string(entity.Type()),
		Status:       string(entity.Status()),
		Street:       addr.Street,
		City:         addr.City,
		State:        addr.State,
		PostalCode:   addr.PostalCode,
		Country:      addr.Country,
		Phone:        contact.Phone,
		ContactEmail: contact.Email,
		Manager:      contact.Manager,
		Settings:     datatypes.JSON(settings),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

func (m *LocationMapperImpl) ToEntities(models []*models.LocationModel) ([]*location.Location, error) {
	out := make([]*location.Location, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
