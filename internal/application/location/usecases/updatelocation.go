package usecases

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// UpdateLocationCommand carries a partial update; nil fields are left as is.
type UpdateLocationCommand struct {
	TenantID   string             `json:"-"`
	LocationID string             `json:"-"`
	Name       *string            `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Type       *string            `json:"type,omitempty" validate:"omitempty,oneof=main branch warehouse kiosk"`
	Status     *string            `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
	Address    *location.Address  `json:"address,omitempty"`
	Contact    *location.Contact  `json:"contact,omitempty"`
	Settings   *location.Settings `json:"settings,omitempty"`
}

type UpdateLocationResult struct {
	Location *location.Location
	Warning  error
}

type UpdateLocationUseCase struct {
	repo      location.Repository
	tx        TransactionRunner
	sync      *BranchSync
	publisher events.Publisher
	now       func() time.Time
	logger    logger.Interface
}

func NewUpdateLocationUseCase(
	repo location.Repository,
	tx TransactionRunner,
	sync *BranchSync,
	publisher events.Publisher,
	logger logger.Interface,
) *UpdateLocationUseCase {
	return &UpdateLocationUseCase{
		repo:      repo,
		tx:        tx,
		sync:      sync,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *UpdateLocationUseCase) Execute(ctx context.Context, cmd UpdateLocationCommand) (*UpdateLocationResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	now := uc.now()
	var updated *location.Location
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := uc.repo.Get(ctx, cmd.TenantID, cmd.LocationID)
		if err != nil {
			return fmt.Errorf("failed to get location: %w", err)
		}
		if l == nil {
			return location.ErrLocationNotFound
		}

		if cmd.Type != nil {
			target := location.Type(*cmd.Type)
			if target != l.Type() {
				otherMain, err := uc.otherMainExists(ctx, l)
				if err != nil {
					return err
				}
				if err := location.CheckTypeChange(l, target, otherMain); err != nil {
					return err
				}
				if err := l.ChangeType(target, now); err != nil {
					return apperrors.NewValidationError(err.Error())
				}
			}
		}
		if err := applyLocationUpdate(l, cmd, now); err != nil {
			return err
		}

		updated = l
		return uc.repo.Update(ctx, l)
	})
	if err != nil {
		mapped := toAppError(err)
		if apperrors.IsAppError(mapped) {
			return nil, mapped
		}
		uc.logger.Errorw("failed to update location",
			"tenant_id", cmd.TenantID,
			"location_id", cmd.LocationID,
			"error", err,
		)
		return nil, apperrors.NewPersistenceError("failed to update location", err.Error())
	}

	result := &UpdateLocationResult{Location: updated}
	result.Warning = uc.sync.Upsert(ctx, updated, now)
	publishLocationChange(ctx, uc.publisher, uc.logger, cmd.TenantID, updated.ID(), now)

	uc.logger.Infow("location updated", "tenant_id", cmd.TenantID, "location_id", updated.ID())
	return result, nil
}

func (uc *UpdateLocationUseCase) otherMainExists(ctx context.Context, l *location.Location) (bool, error) {
	locs, err := uc.repo.ListByTenant(ctx, l.TenantID())
	if err != nil {
		return false, fmt.Errorf("failed to list locations: %w", err)
	}
	for _, other := range locs {
		if other.ID() != l.ID() && other.IsMain() {
			return true, nil
		}
	}
	return false, nil
}

func applyLocationUpdate(l *location.Location, cmd UpdateLocationCommand, now time.Time) error {
	if cmd.Name != nil {
		if err := l.Rename(utils.SanitizeText(*cmd.Name), now); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Status != nil {
		if err := l.ChangeStatus(location.Status(*cmd.Status), now); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Address != nil {
		l.UpdateAddress(sanitizeAddress(*cmd.Address), now)
	}
	if cmd.Contact != nil {
		l.UpdateContact(sanitizeContact(*cmd.Contact), now)
	}
	if cmd.Settings != nil {
		if err := l.UpdateSettings(*cmd.Settings, now); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
	}
	return nil
}
