package location

import (
	"time"

	"tillpoint/internal/shared/id"
)

// BranchStats is the rollup other modules write onto the projection.
type BranchStats struct {
	SalesCents   int64 `json:"salesCents"`
	OrderCount   int64 `json:"orderCount"`
	ProductCount int64 `json:"productCount"`
}

// Branch is the legacy-facing projection of a Location. Its id shares the
// location's short id: loc_<short> projects to br_<short>.
type Branch struct {
	ID         string
	LocationID string
	TenantID   string
	Name       string
	Address    string
	Phone      string
	Manager    string
	IsMain     bool
	Stats      BranchStats
	Deleted    bool
	DeletedAt  *time.Time
	UpdatedAt  time.Time
}

// BranchIDFor derives the projection id for a location id.
func BranchIDFor(locationID string) (string, error) {
	return id.Reprefix(locationID, id.PrefixLocation, id.PrefixBranch)
}

// LocationIDFor reverses BranchIDFor.
func LocationIDFor(branchID string) (string, error) {
	return id.Reprefix(branchID, id.PrefixBranch, id.PrefixLocation)
}

// ProjectBranch builds the projection for l. Stats are left zero; stores
// keep the existing rollup on upsert.
func ProjectBranch(l *Location, now time.Time) (*Branch, error) {
	branchID, err := BranchIDFor(l.ID())
	if err != nil {
		return nil, err
	}
	c := l.Contact()
	return &Branch{
		ID:         branchID,
		LocationID: l.ID(),
		TenantID:   l.TenantID(),
		Name:       l.Name(),
		Address:    l.Address().String(),
		Phone:      c.Phone,
		Manager:    c.Manager,
		IsMain:     l.IsMain(),
		UpdatedAt:  now,
	}, nil
}
