// Package profile stores per-user, per-tenant preferences that survive
// sessions, most importantly the last explicitly chosen active location.
package profile

import (
	"context"
	"errors"
	"time"
)

// ErrStaleVersion rejects a selection write whose version is not above the
// stored one.
var ErrStaleVersion = errors.New("a newer active location is already stored")

type Profile struct {
	TenantID         string
	UserID           string
	ActiveLocationID string
	// Version is the intent version of ActiveLocationID. Every instance
	// stamps new intents above it.
	Version   uint64
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when the user has no stored profile.
	Get(ctx context.Context, tenantID, userID string) (*Profile, error)
	// SaveActiveLocation stores locationID only when version is greater
	// than the stored version, else it returns ErrStaleVersion.
	SaveActiveLocation(ctx context.Context, tenantID, userID, locationID string, version uint64, at time.Time) error
}
