package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type CreateLocationCommand struct {
	TenantID string            `json:"-"`
	Name     string            `json:"name" validate:"required,max=100"`
	Type     string            `json:"type" validate:"omitempty,oneof=main branch warehouse kiosk"`
	Address  location.Address  `json:"address"`
	Contact  location.Contact  `json:"contact"`
	Settings location.Settings `json:"settings"`
}

type CreateLocationResult struct {
	Location *location.Location
	// Warning is set when the branch projection could not be written.
	Warning error
}

type CreateLocationUseCase struct {
	repo      location.Repository
	tx        TransactionRunner
	states    StateResolver
	cache     StateInvalidator
	sync      *BranchSync
	publisher events.Publisher
	now       func() time.Time
	logger    logger.Interface
}

func NewCreateLocationUseCase(
	repo location.Repository,
	tx TransactionRunner,
	states StateResolver,
	cache StateInvalidator,
	sync *BranchSync,
	publisher events.Publisher,
	logger logger.Interface,
) *CreateLocationUseCase {
	return &CreateLocationUseCase{
		repo:      repo,
		tx:        tx,
		states:    states,
		cache:     cache,
		sync:      sync,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *CreateLocationUseCase) Execute(ctx context.Context, cmd CreateLocationCommand) (*CreateLocationResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if err := cmd.Settings.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	requested := location.Type(cmd.Type)
	if requested == "" {
		requested = location.TypeBranch
	}

	state, err := uc.states.Resolve(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var created *location.Location
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := uc.repo.ListByTenant(ctx, cmd.TenantID)
		if err != nil {
			return fmt.Errorf("failed to list locations: %w", err)
		}
		if err := checkLocationLimit(state, int64(len(existing))); err != nil {
			return err
		}

		hasMain := false
		for _, l := range existing {
			if l.IsMain() {
				hasMain = true
				break
			}
		}
		t, err := location.TypeForNew(requested, hasMain)
		if err != nil {
			return err
		}

		created, err = location.NewLocation(cmd.TenantID, utils.SanitizeText(cmd.Name), t,
			sanitizeAddress(cmd.Address), sanitizeContact(cmd.Contact), cmd.Settings, now)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		return uc.repo.Create(ctx, created)
	})
	if err != nil {
		if apperrors.IsAppError(err) || errors.Is(err, location.ErrMainAlreadyExists) {
			return nil, toAppError(err)
		}
		uc.logger.Errorw("failed to create location", "tenant_id", cmd.TenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to create location", err.Error())
	}

	uc.cache.Invalidate(ctx, cmd.TenantID)
	result := &CreateLocationResult{Location: created}
	result.Warning = uc.sync.Upsert(ctx, created, now)
	publishLocationChange(ctx, uc.publisher, uc.logger, cmd.TenantID, created.ID(), now)

	uc.logger.Infow("location created",
		"tenant_id", cmd.TenantID,
		"location_id", created.ID(),
		"type", created.Type(),
	)
	return result, nil
}

// checkLocationLimit enforces maxLocations. Without a subscription only the
// first location may be created.
func checkLocationLimit(state *subscription.State, current int64) error {
	if state == nil {
		if current == 0 {
			return nil
		}
		return apperrors.NewForbiddenError("no subscription")
	}
	d := entitlement.CheckLimit(state.Limits, subscription.LimitMaxLocations, current, permission.ModuleLocations)
	return d.Err()
}

func sanitizeAddress(a location.Address) location.Address {
	return location.Address{
		Street:     utils.SanitizeText(a.Street),
		City:       utils.SanitizeText(a.City),
		State:      utils.SanitizeText(a.State),
		PostalCode: utils.SanitizeText(a.PostalCode),
		Country:    utils.SanitizeText(a.Country),
	}
}

func sanitizeContact(c location.Contact) location.Contact {
	return location.Contact{
		Phone:   utils.SanitizeText(c.Phone),
		Email:   utils.SanitizeText(c.Email),
		Manager: utils.SanitizeText(c.Manager),
	}
}
