package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

const (
	cleanupAttempts = 3
	cleanupBackoff  = 200 * time.Millisecond
)

// Backoffs keep attempt counters, so each delete gets a fresh one.
func defaultCleanupBackoff() retry.Backoff {
	return retry.WithMaxRetries(cleanupAttempts-1, retry.NewConstant(cleanupBackoff))
}

type DeleteLocationCommand struct {
	TenantID   string
	LocationID string
}

type DeleteLocationResult struct {
	LocationID string
	// Warning is set when the branch projection could not be soft-deleted.
	Warning error
}

// DeleteLocationUseCase removes a location and its dependent records in
// one transaction, then verifies nothing was left behind. Leftovers are
// retried individually; what still remains is reported as a
// *location.PartialDeleteError.
type DeleteLocationUseCase struct {
	repo      location.Repository
	data      location.DataRepository
	tx        TransactionRunner
	cache     StateInvalidator
	sync      *BranchSync
	publisher events.Publisher
	backoff   func() retry.Backoff
	now       func() time.Time
	logger    logger.Interface
}

func NewDeleteLocationUseCase(
	repo location.Repository,
	data location.DataRepository,
	tx TransactionRunner,
	cache StateInvalidator,
	sync *BranchSync,
	publisher events.Publisher,
	logger logger.Interface,
) *DeleteLocationUseCase {
	return &DeleteLocationUseCase{
		repo:      repo,
		data:      data,
		tx:        tx,
		cache:     cache,
		sync:      sync,
		publisher: publisher,
		backoff:   defaultCleanupBackoff,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *DeleteLocationUseCase) Execute(ctx context.Context, cmd DeleteLocationCommand) (*DeleteLocationResult, error) {
	l, err := uc.repo.Get(ctx, cmd.TenantID, cmd.LocationID)
	if err != nil {
		uc.logger.Errorw("failed to get location", "location_id", cmd.LocationID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to get location", err.Error())
	}
	if l == nil {
		return nil, toAppError(location.ErrLocationNotFound)
	}
	if l.IsMain() {
		return nil, toAppError(location.ErrCannotDeleteMain)
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, kind := range location.DependentRecords {
			if err := uc.data.DeleteRecords(ctx, cmd.TenantID, cmd.LocationID, kind); err != nil {
				return fmt.Errorf("failed to delete %s: %w", kind, err)
			}
		}
		return uc.repo.Delete(ctx, cmd.TenantID, cmd.LocationID)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete location",
			"tenant_id", cmd.TenantID,
			"location_id", cmd.LocationID,
			"error", err,
		)
		return nil, apperrors.NewPersistenceError("failed to delete location", err.Error())
	}
	uc.cache.Invalidate(ctx, cmd.TenantID)

	if err := uc.verifyAndCompensate(ctx, cmd.TenantID, cmd.LocationID); err != nil {
		uc.logger.Errorw("location delete left records behind",
			"tenant_id", cmd.TenantID,
			"location_id", cmd.LocationID,
			"error", err,
		)
		return nil, err
	}

	now := uc.now()
	result := &DeleteLocationResult{LocationID: cmd.LocationID}
	result.Warning = uc.sync.SoftDelete(ctx, cmd.TenantID, cmd.LocationID, now)
	publishLocationChange(ctx, uc.publisher, uc.logger, cmd.TenantID, cmd.LocationID, now)

	uc.logger.Infow("location deleted", "tenant_id", cmd.TenantID, "location_id", cmd.LocationID)
	return result, nil
}

func (uc *DeleteLocationUseCase) verifyAndCompensate(ctx context.Context, tenantID, locationID string) error {
	remaining, err := uc.remaining(ctx, tenantID, locationID)
	if err == nil && len(remaining) == 0 {
		return nil
	}

	var lastErr error
	err = retry.Do(ctx, uc.backoff(), func(ctx context.Context) error {
		for _, kind := range remaining {
			if kind == location.RecordLocation {
				lastErr = uc.repo.Delete(ctx, tenantID, locationID)
			} else {
				lastErr = uc.data.DeleteRecords(ctx, tenantID, locationID, kind)
			}
			if lastErr != nil {
				uc.logger.Warnw("cleanup attempt failed", "location_id", locationID, "kind", kind, "error", lastErr)
			}
		}
		var countErr error
		remaining, countErr = uc.remaining(ctx, tenantID, locationID)
		if countErr != nil {
			lastErr = countErr
			return retry.RetryableError(countErr)
		}
		if len(remaining) > 0 {
			return retry.RetryableError(fmt.Errorf("%d record kinds remain", len(remaining)))
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if len(remaining) == 0 {
		remaining = append([]location.RecordKind{location.RecordLocation}, location.DependentRecords...)
	}
	return &location.PartialDeleteError{LocationID: locationID, Remaining: remaining, Err: lastErr}
}

// remaining lists the record kinds that still exist for the location.
func (uc *DeleteLocationUseCase) remaining(ctx context.Context, tenantID, locationID string) ([]location.RecordKind, error) {
	var out []location.RecordKind
	l, err := uc.repo.Get(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if l != nil {
		out = append(out, location.RecordLocation)
	}
	for _, kind := range location.DependentRecords {
		n, err := uc.data.CountRecords(ctx, tenantID, locationID, kind)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out = append(out, kind)
		}
	}
	return out, nil
}
