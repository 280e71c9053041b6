package location

import (
	"sort"
	"time"
)

// ResolveMain enforces the single-main rule over a tenant's locations. It
// keeps the oldest main, demotes any other main to TypeBranch and returns
// the demoted locations. main is nil when none of locs is a main location.
func ResolveMain(locs []*Location, now time.Time) (main *Location, demoted []*Location) {
	mains := make([]*Location, 0, 1)
	for _, l := range locs {
		if l.IsMain() {
			mains = append(mains, l)
		}
	}
	if len(mains) == 0 {
		return nil, nil
	}

	sort.SliceStable(mains, func(i, j int) bool {
		return mains[i].CreatedAt().Before(mains[j].CreatedAt())
	})
	for _, extra := range mains[1:] {
		_ = extra.ChangeType(TypeBranch, now)
		demoted = append(demoted, extra)
	}
	return mains[0], demoted
}

// TypeForNew returns the type a new location actually gets: the first
// location of a tenant without a main is forced to main.
func TypeForNew(requested Type, hasMain bool) (Type, error) {
	if !hasMain {
		return TypeMain, nil
	}
	if requested == TypeMain {
		return "", ErrMainAlreadyExists
	}
	return requested, nil
}

// CheckTypeChange validates a type change for l given whether another
// location of the tenant is already main.
func CheckTypeChange(l *Location, target Type, otherMainExists bool) error {
	if l.IsMain() && target != TypeMain {
		return ErrMainTypeLocked
	}
	if !l.IsMain() && target == TypeMain && otherMainExists {
		return ErrMainAlreadyExists
	}
	return nil
}
