package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tillpoint/internal/domain/team"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type InvitationRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.InvitationMapper
	logger logger.Interface
}

func NewInvitationRepository(db *gorm.DB, logger logger.Interface) team.InvitationRepository {
	return &InvitationRepositoryImpl{
		db:     db,
		mapper: mappers.NewInvitationMapper(),
		logger: logger,
	}
}

func (r *InvitationRepositoryImpl) Create(ctx context.Context, inv *team.Invitation) error {
	model, err := r.mapper.ToModel(inv)
	if err != nil {
		r.logger.Errorw("failed to map invitation entity to model", "error", err)
		return fmt.Errorf("failed to map invitation entity: %w", err)
	}
	model.UpdatedAt = model.CreatedAt

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create invitation", "tenant_id", inv.TenantID(), "error", err)
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	r.logger.Infow("invitation created", "tenant_id", inv.TenantID(), "invitation_id", inv.ID(), "role", inv.Role())
	return nil
}

// Update persists status changes. Role, locations and permissions are
// fixed once the invitation is sent.
func (r *InvitationRepositoryImpl) Update(ctx context.Context, inv *team.Invitation) error {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.InvitationModel{}).
		Where("invitation_id = ?", inv.ID()).
		Updates(map[string]interface{}{
			"status":      string(inv.Status()),
			"accepted_at": inv.AcceptedAt(),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update invitation", "invitation_id", inv.ID(), "error", result.Error)
		return fmt.Errorf("failed to update invitation: %w", result.Error)
	}

	r.logger.Infow("invitation updated", "invitation_id", inv.ID(), "status", inv.Status())
	return nil
}

func (r *InvitationRepositoryImpl) GetByToken(ctx context.Context, token string) (*team.Invitation, error) {
	return r.first(ctx, "token = ?", token)
}

func (r *InvitationRepositoryImpl) GetByID(ctx context.Context, tenantID, invitationID string) (*team.Invitation, error) {
	return r.first(ctx, "tenant_id = ? AND invitation_id = ?", tenantID, invitationID)
}

func (r *InvitationRepositoryImpl) ListPending(ctx context.Context, tenantID string) ([]*team.Invitation, error) {
	var rows []*models.InvitationModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForTenant(tenantID)).
		Where("status = ?", string(team.InvitationPending)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list pending invitations", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *InvitationRepositoryImpl) CountPending(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvitationModel{}).
		Scopes(db.ForTenant(tenantID)).
		Where("status = ?", string(team.InvitationPending)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count pending invitations", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count invitations: %w", err)
	}
	return count, nil
}

// first returns (nil, nil) when no row matches.
func (r *InvitationRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*team.Invitation, error) {
	var model models.InvitationModel
	err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get invitation", "error", err)
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
