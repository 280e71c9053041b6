package subscription

// Unlimited is the sentinel for a limit that never blocks.
const Unlimited int64 = -1

type LimitKey string

const (
	LimitMaxUsers          LimitKey = "maxUsers"
	LimitMaxProducts       LimitKey = "maxProducts"
	LimitMaxSuppliers      LimitKey = "maxSuppliers"
	LimitMaxLocations      LimitKey = "maxLocations"
	LimitMaxOrdersPerMonth LimitKey = "maxOrdersPerMonth"
)

var AllLimits = []LimitKey{
	LimitMaxUsers, LimitMaxProducts, LimitMaxSuppliers, LimitMaxLocations, LimitMaxOrdersPerMonth,
}

func (k LimitKey) IsValid() bool {
	for _, l := range AllLimits {
		if l == k {
			return true
		}
	}
	return false
}

// Limits maps each limit key to a non-negative cap or Unlimited.
type Limits map[LimitKey]int64

// Get returns the configured cap for key.
func (l Limits) Get(key LimitKey) (int64, bool) {
	v, ok := l[key]
	return v, ok
}

func (l Limits) Clone() Limits {
	out := make(Limits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Usage holds the live counters owned by the features that increment them.
type Usage struct {
	Users           int64 `json:"users"`
	Products        int64 `json:"products"`
	Suppliers       int64 `json:"suppliers"`
	Locations       int64 `json:"locations"`
	OrdersThisMonth int64 `json:"ordersThisMonth"`
}

// For returns the counter measured against key.
func (u Usage) For(key LimitKey) (int64, bool) {
	switch key {
	case LimitMaxUsers:
		return u.Users, true
	case LimitMaxProducts:
		return u.Products, true
	case LimitMaxSuppliers:
		return u.Suppliers, true
	case LimitMaxLocations:
		return u.Locations, true
	case LimitMaxOrdersPerMonth:
		return u.OrdersThisMonth, true
	}
	return 0, false
}
