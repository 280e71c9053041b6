package mappers

import (
	"fmt"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/infrastructure/persistence/models"
)

type InvitationMapper interface {
	ToEntity(model *models.InvitationModel) (*team.Invitation, error)
	ToModel(entity *team.Invitation) (*models.InvitationModel, error)
	ToEntities(models []*models.InvitationModel) ([]*team.Invitation, error)
}

type InvitationMapperImpl struct{}

func NewInvitationMapper() InvitationMapper {
	return &InvitationMapperImpl{}
}

func (m *InvitationMapperImpl) ToEntity(model *models.InvitationModel) (*team.Invitation, error) {
	if model == nil {
		return nil, nil
	}

	role := permission.Role(model.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid invitation role: %s", model.Role)
	}
	locationIDs, err := unmarshalStrings(model.LocationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal location ids: %w", err)
	}
	perms, err := unmarshalPermissions(model.Permissions)
	if err != nil {
		return nil, err
	}

	return team.ReconstructInvitation(
		model.InvitationID,
		model.TenantID,
		model.Email,
		role,
		locationIDs,
		perms,
		model.Token,
		team.InvitationStatus(model.Status),
		model.InvitedBy,
		model.ExpiresAt,
		model.CreatedAt,
		model.AcceptedAt,
	), nil
}

func (m *InvitationMapperImpl) ToModel(entity *team.Invitation) (*models.InvitationModel, error) {
	if entity == nil {
		return nil, nil
	}

	locationIDs, err := marshalStrings(entity.LocationIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location ids: %w", err)
	}
	perms, err := marshalStrings(entity.Permissions().Strings())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	return &models.InvitationModel{
		InvitationID: entity.ID(),
		TenantID:     entity.TenantID(),
		Email:        entity.Email(),
		Role:         entity.Role().String(),
		LocationIDs:  locationIDs,
		Permissions:  perms,
		Token:        entity.Token(),
		Status:       string(entity.Status()),
		InvitedBy:    entity.InvitedBy(),
		ExpiresAt:    entity.ExpiresAt(),
		AcceptedAt:   entity.AcceptedAt(),
		CreatedAt:    entity.CreatedAt(),
	}, nil
}

func (m *InvitationMapperImpl) ToEntities(models []*models.InvitationModel) ([]*team.Invitation, error) {
	out := make([]*team.Invitation, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
