package mappers

import (
	"fmt"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/infrastructure/persistence/models"
)

type TeamMemberMapper interface {
	ToEntity(model *models.TeamMemberModel) (*team.Member, error)
	ToModel(entity *team.Member) (*models.TeamMemberModel, error)
	ToEntities(models []*models.TeamMemberModel) ([]*team.Member, error)
}

type TeamMemberMapperImpl struct{}

func NewTeamMemberMapper() TeamMemberMapper {
	return &TeamMemberMapperImpl{}
}

func (m *TeamMemberMapperImpl) ToEntity(model *models.TeamMemberModel) (*team.Member, error) {
	if model == nil {
		return nil, nil
	}

	role := permission.Role(model.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role: %s", model.Role)
	}
	status := team.MemberStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid member status: %s", model.Status)
	}

	locationIDs, err := unmarshalStrings(model.LocationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal location ids: %w", err)
	}
	perms, err := unmarshalPermissions(model.Permissions)
	if err != nil {
		return nil, err
	}

	return team.ReconstructMember(
		model.ID,
		model.TenantID,
		model.UserID,
		model.Email,
		model.DisplayName,
		role,
		status,
		locationIDs,
		perms,
		model.JoinedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	), nil
}

func (m *TeamMemberMapperImpl) ToModel(entity *team.Member) (*models.TeamMemberModel, error) {
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

	return &models.TeamMemberModel{
		ID:          entity.ID(),
		TenantID:    entity.TenantID(),
		UserID:      entity.UserID(),
		Email:       entity.Email(),
		DisplayName: entity.DisplayName(),
		Role:        entity.Role().String(),
		Status:      string(entity.Status()),
		LocationIDs: locationIDs,
		Permissions: perms,
		JoinedAt:    entity.JoinedAt(),
		LastLoginAt: entity.LastLogin(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}

func (m *TeamMemberMapperImpl) ToEntities(models []*models.TeamMemberModel) ([]*team.Member, error) {
	out := make([]*team.Member, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
