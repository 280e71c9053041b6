// Package usecases implements the location registry: listing with lazy
// main-location repair, create/update/delete, and the branch projection.
package usecases

import (
	"context"
	"errors"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/subscription"
	apperrors "tillpoint/internal/shared/errors"
)

// TransactionRunner runs fn in one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StateResolver provides the tenant's subscription for limit checks.
type StateResolver interface {
	Resolve(ctx context.Context, tenantID string) (*subscription.State, error)
}

// StateInvalidator drops the cached subscription state after location usage
// changes.
type StateInvalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

// toAppError maps location domain errors to API errors.
func toAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, location.ErrLocationNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, location.ErrCannotDeleteMain),
		errors.Is(err, location.ErrMainTypeLocked):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, location.ErrMainAlreadyExists):
		return apperrors.NewConflictError(err.Error())
	}
	return err
}
