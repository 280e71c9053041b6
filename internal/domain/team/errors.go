package team

import "errors"

var (
	ErrMemberNotFound       = errors.New("team member not found")
	ErrMemberExists         = errors.New("user is already a member of this tenant")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationExpired    = errors.New("invitation has expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrCannotRemoveOwner    = errors.New("the tenant owner cannot be removed or demoted")
	ErrRoleEscalation       = errors.New("cannot assign a role above your own")
)
