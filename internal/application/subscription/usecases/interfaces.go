// Package usecases holds the subscription commands: plan changes, status
// changes driven by billing, trials and trial expiry.
package usecases

import "context"

// StateInvalidator drops cached subscription state after a write.
type StateInvalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}
