package location

import (
	"fmt"
	"maps"
	"time"
)

const (
	DefaultTimezone = "UTC"
	DefaultCurrency = "USD"
)

// Weekdays are the keys accepted in Settings.BusinessHours.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours holds opening times as "HH:MM".
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

type Settings struct {
	Timezone      string              `json:"timezone"`
	Currency      string              `json:"currency"`
	BusinessHours map[string]DayHours `json:"businessHours,omitempty"`
	Features      map[string]bool     `json:"features,omitempty"`
}

func (s Settings) Validate() error {
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q", s.Timezone)
		}
	}
	if s.Currency != "" && len(s.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter code")
	}
	for day, h := range s.BusinessHours {
		if !isWeekday(day) {
			return fmt.Errorf("invalid weekday %q", day)
		}
		if h.Closed {
			continue
		}
		open, err1 := time.Parse("15:04", h.Open)
		closing, err2 := time.Parse("15:04", h.Close)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("business hours for %s must be HH:MM", day)
		}
		if !closing.After(open) {
			return fmt.Errorf("business hours for %s close before they open", day)
		}
	}
	return nil
}

func (s Settings) withDefaults() Settings {
	out := s.clone()
	if out.Timezone == "" {
		out.Timezone = DefaultTimezone
	}
	if out.Currency == "" {
		out.Currency = DefaultCurrency
	}
	return out
}

func (s Settings) clone() Settings {
	out := s
	out.BusinessHours = maps.Clone(s.BusinessHours)
	out.Features = maps.Clone(s.Features)
	return out
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
