package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	locationUsecases "tillpoint/internal/application/location/usecases"
	"tillpoint/internal/application/locationswitch"
	subscriptionUsecases "tillpoint/internal/application/subscription/usecases"
	teamUsecases "tillpoint/internal/application/team/usecases"
	tenantUsecases "tillpoint/internal/application/tenant/usecases"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
)

type ListLocationsExecutor interface {
	Execute(ctx context.Context, q locationUsecases.ListLocationsQuery) ([]*location.Location, error)
}

type CreateLocationExecutor interface {
	Execute(ctx context.Context, cmd locationUsecases.CreateLocationCommand) (*locationUsecases.CreateLocationResult, error)
}

type UpdateLocationExecutor interface {
	Execute(ctx context.Context, cmd locationUsecases.UpdateLocationCommand) (*locationUsecases.UpdateLocationResult, error)
}

type DeleteLocationExecutor interface {
	Execute(ctx context.Context, cmd locationUsecases.DeleteLocationCommand) (*locationUsecases.DeleteLocationResult, error)
}

type ListBranchesExecutor interface {
	Execute(ctx context.Context, q locationUsecases.ListBranchesQuery) ([]*location.Branch, error)
}

type ListMembersExecutor interface {
	Execute(ctx context.Context, tenantID string) (*teamUsecases.TeamView, error)
}

type InviteMemberExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.InviteMemberCommand) (*team.Invitation, error)
}

type AddMemberExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.AddMemberCommand) (*team.Member, error)
}

type UpdateMemberExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.UpdateMemberCommand) (*team.Member, error)
}

type RemoveMemberExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.RemoveMemberCommand) error
}

type AcceptInvitationExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.AcceptInvitationCommand) (*team.Member, error)
}

type RevokeInvitationExecutor interface {
	Execute(ctx context.Context, cmd teamUsecases.RevokeInvitationCommand) error
}

type TenantLister interface {
	Mine(ctx context.Context, actor authorization.Actor) ([]tenantUsecases.TenantMembership, error)
	All(ctx context.Context, actor authorization.Actor) ([]*tenant.Tenant, error)
	Select(ctx context.Context, actor authorization.Actor, requested string) (string, error)
}

type CreateTenantExecutor interface {
	Execute(ctx context.Context, cmd tenantUsecases.CreateTenantCommand) (*tenantUsecases.CreateTenantResult, error)
}

type StateResolver interface {
	Resolve(ctx context.Context, tenantID string) (*subscription.State, error)
}

type ChangePlanExecutor interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.ChangePlanCommand) (*subscriptionUsecases.ChangePlanResult, error)
}

type StartTrialExecutor interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.StartTrialCommand) (*subscription.Subscription, error)
}

type UpdateStatusExecutor interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.UpdateStatusCommand) error
}

// Decider is satisfied by middleware.AuthzMiddleware.
type Decider interface {
	Decide(c *gin.Context, capability permission.Capability, locationID string) (authorization.Decision, error)
}

type MachineProvider interface {
	Machine(ctx context.Context, tenantID, userID, explicit string) (*locationswitch.Machine, error)
}

type CandidateLister interface {
	Candidates(ctx context.Context, tenantID, userID string) ([]*location.Location, error)
}
