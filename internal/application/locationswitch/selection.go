// Package locationswitch tracks which location a user is working in and
// moves between locations with versioned intents instead of timers.
package locationswitch

import (
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
)

// Source records how a selection came about. Only explicit selections
// may replace another device's choice.
type Source string

const (
	SourceExplicit  Source = "explicit"
	SourcePersisted Source = "persisted"
	SourceDefault   Source = "default"
)

type Selection struct {
	TenantID   string    `json:"tenantId"`
	UserID     string    `json:"userId"`
	LocationID string    `json:"locationId"`
	Version    uint64    `json:"version"`
	Source     Source    `json:"source"`
	At         time.Time `json:"at"`
}

func (s Selection) event() events.ChangeEvent {
	return events.ChangeEvent{
		TenantID:   s.TenantID,
		UserID:     s.UserID,
		Kind:       events.ChangeSelection,
		EntityID:   s.LocationID,
		Version:    s.Version,
		Source:     string(s.Source),
		OccurredAt: s.At,
	}
}

// SelectionFromEvent converts a selection change back into a Selection.
func SelectionFromEvent(ev events.ChangeEvent) Selection {
	return Selection{
		TenantID:   ev.TenantID,
		UserID:     ev.UserID,
		LocationID: ev.EntityID,
		Version:    ev.Version,
		Source:     Source(ev.Source),
		At:         ev.OccurredAt,
	}
}

// ResolveInitial picks the starting location from the candidates the user
// may access, by priority: the session's explicit choice, the persisted
// profile choice, the main location, the first active location, any
// location. ok is false when there are no candidates.
func ResolveInitial(tenantID, userID, explicit, persisted string, candidates []*location.Location) (sel Selection, ok bool) {
	if len(candidates) == 0 {
		return Selection{}, false
	}
	pick := func(id string, src Source) Selection {
		return Selection{TenantID: tenantID, UserID: userID, LocationID: id, Source: src}
	}

	find := func(id string) bool {
		if id == "" {
			return false
		}
		for _, l := range candidates {
			if l.ID() == id {
				return true
			}
		}
		return false
	}
	if find(explicit) {
		return pick(explicit, SourceExplicit), true
	}
	if find(persisted) {
		return pick(persisted, SourcePersisted), true
	}
	for _, l := range candidates {
		if l.IsMain() {
			return pick(l.ID(), SourceDefault), true
		}
	}
	for _, l := range candidates {
		if l.IsActive() {
			return pick(l.ID(), SourceDefault), true
		}
	}
	return pick(candidates[0].ID(), SourceDefault), true
}
