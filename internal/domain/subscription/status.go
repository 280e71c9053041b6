// Package subscription models a tenant's plan, its entitlements and the
// usage counted against them.
package subscription

import "fmt"

type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

// CanUseService reports whether features may be used at all.
func (s Status) CanUseService() bool {
	return s == StatusActive || s == StatusTrialing
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

var transitions = map[Status][]Status{
	StatusTrialing: {StatusActive, StatusCanceled, StatusExpired},
	StatusActive:   {StatusPastDue, StatusCanceled, StatusExpired},
	StatusPastDue:  {StatusActive, StatusCanceled, StatusExpired},
	StatusCanceled: {StatusActive},
	StatusExpired:  {StatusActive},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid subscription status: %q", s)
	}
	return st, nil
}
