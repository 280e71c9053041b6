// Package location models a tenant's physical sites and the branch
// projection kept alongside them.
package location

import (
	"fmt"
	"strings"
	"time"

	"tillpoint/internal/shared/id"
)

type Type string

const (
	TypeMain      Type = "main"
	TypeBranch    Type = "branch"
	TypeWarehouse Type = "warehouse"
	TypeKiosk     Type = "kiosk"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeMain, TypeBranch, TypeWarehouse, TypeKiosk:
		return true
	}
	return false
}

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusMaintenance
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// String renders the non-empty parts joined by commas.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Manager string `json:"manager,omitempty"`
}

// Location is a physical site. Each tenant has exactly one TypeMain location.
type Location struct {
	id        string
	tenantID  string
	name      string
	locType   Type
	address   Address
	contact   Contact
	settings  Settings
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

func NewLocation(tenantID, name string, t Type, address Address, contact Contact, settings Settings, now time.Time) (*Location, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("location name is required")
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid location type: %s", t)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	locID, err := id.GenerateWithPrefix(id.PrefixLocation)
	if err != nil {
		return nil, err
	}
	return &Location{
		id:        locID,
		tenantID:  tenantID,
		name:      strings.TrimSpace(name),
		locType:   t,
		address:   address,
		contact:   contact,
		settings:  settings.withDefaults(),
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewDefaultMain synthesizes the main location for a tenant that has none.
func NewDefaultMain(tenantID string, now time.Time) (*Location, error) {
	return NewLocation(tenantID, "Main Location", TypeMain, Address{}, Contact{}, Settings{}, now)
}

func ReconstructLocation(
	locationID, tenantID, name string,
	t Type,
	address Address,
	contact Contact,
	settings Settings,
	status Status,
	createdAt, updatedAt time.Time,
) *Location {
	return &Location{
		id:        locationID,
		tenantID:  tenantID,
		name:      name,
		locType:   t,
		address:   address,
		contact:   contact,
		settings:  settings,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (l *Location) ID() string           { return l.id }
func (l *Location) TenantID() string     { return l.tenantID }
func (l *Location) Name() string         { return l.name }
func (l *Location) Type() Type           { return l.locType }
func (l *Location) Address() Address     { return l.address }
func (l *Location) Contact() Contact     { return l.contact }
func (l *Location) Settings() Settings   { return l.settings.clone() }
func (l *Location) Status() Status       { return l.status }
func (l *Location) CreatedAt() time.Time { return l.createdAt }
func (l *Location) UpdatedAt() time.Time { return l.updatedAt }
func (l *Location) IsMain() bool         { return l.locType == TypeMain }
func (l *Location) IsActive() bool       { return l.status == StatusActive }

func (l *Location) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("location name is required")
	}
	l.name = name
	l.updatedAt = now
	return nil
}

// ChangeType switches the location type. Main/non-main changes are policed
// by the registry, which sees every location of the tenant.
func (l *Location) ChangeType(t Type, now time.Time) error {
	if !t.IsValid() {
		return fmt.Errorf("invalid location type: %s", t)
	}
	l.locType = t
	l.updatedAt = now
	return nil
}

func (l *Location) ChangeStatus(s Status, now time.Time) error {
	if !s.IsValid() {
		return fmt.Errorf("invalid location status: %s", s)
	}
	l.status = s
	l.updatedAt = now
	return nil
}

func (l *Location) UpdateAddress(a Address, now time.Time) {
	l.address = a
	l.updatedAt = now
}

func (l *Location) UpdateContact(c Contact, now time.Time) {
	l.contact = c
	l.updatedAt = now
}

func (l *Location) UpdateSettings(s Settings, now time.Time) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.settings = s.withDefaults()
	l.updatedAt = now
	return nil
}
