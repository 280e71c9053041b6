package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/domain/team"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type TeamMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TeamMemberMapper
	logger logger.Interface
}

func NewTeamMemberRepository(db *gorm.DB, logger logger.Interface) team.MemberRepository {
	return &TeamMemberRepositoryImpl{
		db:     db,
		mapper: mappers.NewTeamMemberMapper(),
		logger: logger,
	}
}

func (r *TeamMemberRepositoryImpl) Create(ctx context.Context, m *team.Member) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		r.logger.Errorw("failed to map member entity to model", "error", err)
		return fmt.Errorf("failed to map member entity: %w", err)
	}
	model.CreatedAt = model.JoinedAt

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return team.ErrMemberExists
		}
		r.logger.Errorw("failed to create member", "tenant_id", m.TenantID(), "user_id", m.UserID(), "error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}
	m.SetID(model.ID)

	r.logger.Infow("member created", "tenant_id", m.TenantID(), "user_id", m.UserID(), "role", m.Role())
	return nil
}

func (r *TeamMemberRepositoryImpl) Update(ctx context.Context, m *team.Member) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		r.logger.Errorw("failed to map member entity to model", "error", err)
		return fmt.Errorf("failed to map member entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.TeamMemberModel{}).
		Where("tenant_id = ? AND user_id = ?", model.TenantID, model.UserID).
		Updates(map[string]interface{}{
			"email":         model.Email,
			"display_name":  model.DisplayName,
			"role":          model.Role,
			"status":        model.Status,
			"location_ids":  model.LocationIDs,
			"permissions":   model.Permissions,
			"last_login_at": model.LastLoginAt,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update member", "tenant_id", model.TenantID, "user_id", model.UserID, "error", result.Error)
		return fmt.Errorf("failed to update member: %w", result.Error)
	}

	r.logger.Infow("member updated", "tenant_id", model.TenantID, "user_id", model.UserID)
	return nil
}

func (r *TeamMemberRepositoryImpl) Delete(ctx context.Context, tenantID, userID string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Delete(&models.TeamMemberModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete member", "tenant_id", tenantID, "user_id", userID, "error", result.Error)
		return fmt.Errorf("failed to delete member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return team.ErrMemberNotFound
	}

	r.logger.Infow("member deleted", "tenant_id", tenantID, "user_id", userID)
	return nil
}

func (r *TeamMemberRepositoryImpl) Get(ctx context.Context, tenantID, userID string) (*team.Member, error) {
	var model models.TeamMemberModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get member", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map member model to entity", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to map member: %w", err)
	}
	return entity, nil
}

func (r *TeamMemberRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]*team.Member, error) {
	var rows []*models.TeamMemberModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForTenant(tenantID)).
		Order("joined_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list members", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *TeamMemberRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*team.Member, error) {
	var rows []*models.TeamMemberModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("joined_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list memberships", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *TeamMemberRepositoryImpl) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TeamMemberModel{}).
		Scopes(db.ForTenant(tenantID)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count members", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
