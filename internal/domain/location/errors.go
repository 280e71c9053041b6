package location

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrCannotDeleteMain   = errors.New("the main location cannot be deleted")
	ErrMainAlreadyExists  = errors.New("tenant already has a main location")
	ErrMainTypeLocked     = errors.New("the main location must stay main")
	ErrInvalidLocationRef = errors.New("location does not belong to tenant")
)

// PartialDeleteError reports a location delete that left dependent records
// behind after every cleanup attempt.
type PartialDeleteError struct {
	LocationID string
	Remaining  []RecordKind
	Err        error
}

func (e *PartialDeleteError) Error() string {
	kinds := make([]string, len(e.Remaining))
	for i, k := range e.Remaining {
		kinds[i] = string(k)
	}
	msg := fmt.Sprintf("location %s partially deleted, remaining: %s", e.LocationID, strings.Join(kinds, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// ProjectionSyncError reports a branch projection that could not be
// written. The location change itself succeeded.
type ProjectionSyncError struct {
	LocationID string
	BranchID   string
	Op         string
	Err        error
}

func (e *ProjectionSyncError) Error() string {
	return fmt.Sprintf("branch projection %s for %s (%s) failed: %v", e.Op, e.LocationID, e.BranchID, e.Err)
}

func (e *ProjectionSyncError) Unwrap() error { return e.Err }
