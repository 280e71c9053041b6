package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/shared/logger"
)

// BranchSync mirrors location changes into the branch projection. Failures
// come back as *location.ProjectionSyncError and never undo the location
// change.
type BranchSync struct {
	branches location.BranchRepository
	logger   logger.Interface
}

func NewBranchSync(branches location.BranchRepository, logger logger.Interface) *BranchSync {
	return &BranchSync{branches: branches, logger: logger}
}

func (s *BranchSync) Upsert(ctx context.Context, l *location.Location, now time.Time) error {
	b, err := location.ProjectBranch(l, now)
	if err != nil {
		return s.fail(l.ID(), "", "upsert", err)
	}
	if err := s.branches.Upsert(ctx, b); err != nil {
		return s.fail(l.ID(), b.ID, "upsert", err)
	}
	return nil
}

func (s *BranchSync) SoftDelete(ctx context.Context, tenantID, locationID string, now time.Time) error {
	branchID, err := location.BranchIDFor(locationID)
	if err != nil {
		return s.fail(locationID, "", "soft-delete", err)
	}
	if err := s.branches.SoftDelete(ctx, tenantID, branchID, now); err != nil {
		return s.fail(locationID, branchID, "soft-delete", err)
	}
	return nil
}

func (s *BranchSync) fail(locationID, branchID, op string, err error) error {
	s.logger.Warnw("branch projection sync failed",
		"location_id", locationID,
		"branch_id", branchID,
		"op", op,
		"error", err,
	)
	return &location.ProjectionSyncError{LocationID: locationID, BranchID: branchID, Op: op, Err: err}
}
