// Package tenant models the isolation boundary every other record belongs to.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tillpoint/internal/shared/id"
)

var ErrTenantNotFound = errors.New("tenant not found")

// Tenant is a business account. Tenants are never deleted.
type Tenant struct {
	id          string
	name        string
	ownerUserID string
	createdAt   time.Time
}

func NewTenant(name, ownerUserID string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if ownerUserID == "" {
		return nil, fmt.Errorf("owner user ID is required")
	}
	tid, err := id.GenerateWithPrefix(id.PrefixTenant)
	if err != nil {
		return nil, err
	}
	return &Tenant{id: tid, name: name, ownerUserID: ownerUserID, createdAt: now}, nil
}

func ReconstructTenant(tenantID, name, ownerUserID string, createdAt time.Time) *Tenant {
	return &Tenant{id: tenantID, name: name, ownerUserID: ownerUserID, createdAt: createdAt}
}

func (t *Tenant) ID() string           { return t.id }
func (t *Tenant) Name() string         { return t.name }
func (t *Tenant) OwnerUserID() string  { return t.ownerUserID }
func (t *Tenant) CreatedAt() time.Time { return t.createdAt }

// Repository is the tenant catalog.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, tenantID string) (*Tenant, error)
	// List returns tenants ordered by creation time.
	List(ctx context.Context) ([]*Tenant, error)
	// ListByOwner returns tenants owned by userID, oldest first.
	ListByOwner(ctx context.Context, userID string) ([]*Tenant, error)
}
