package http

import (
	locationUsecases "tillpoint/internal/application/location/usecases"
	subscriptionUsecases "tillpoint/internal/application/subscription/usecases"
	teamUsecases "tillpoint/internal/application/team/usecases"
	tenantUsecases "tillpoint/internal/application/tenant/usecases"
)

// allUseCases holds every use case the handlers and background jobs call.
type allUseCases struct {
	// Locations
	branchSync        *locationUsecases.BranchSync
	ensureMainUC      *locationUsecases.EnsureMainUseCase
	listLocationsUC   *locationUsecases.ListLocationsUseCase
	createLocationUC  *locationUsecases.CreateLocationUseCase
	updateLocationUC  *locationUsecases.UpdateLocationUseCase
	deleteLocationUC  *locationUsecases.DeleteLocationUseCase
	listBranchesUC    *locationUsecases.ListBranchesUseCase
	reconcileBranchUC *locationUsecases.ReconcileBranchesUseCase

	// Team
	listMembersUC      *teamUsecases.ListMembersUseCase
	inviteMemberUC     *teamUsecases.InviteMemberUseCase
	addMemberUC        *teamUsecases.AddMemberUseCase
	updateMemberUC     *teamUsecases.UpdateMemberUseCase
	removeMemberUC     *teamUsecases.RemoveMemberUseCase
	acceptInvitationUC *teamUsecases.AcceptInvitationUseCase
	revokeInvitationUC *teamUsecases.RevokeInvitationUseCase

	// Tenants
	listTenantsUC  *tenantUsecases.ListTenantsUseCase
	createTenantUC *tenantUsecases.CreateTenantUseCase

	// Subscriptions
	changePlanUC   *subscriptionUsecases.ChangePlanUseCase
	updateStatusUC *subscriptionUsecases.UpdateStatusUseCase
	startTrialUC   *subscriptionUsecases.StartTrialUseCase
	expireTrialsUC *subscriptionUsecases.ExpireTrialsUseCase
}

// initUseCases wires the use cases over the repositories, the feed and
// the subscription resolver built in initInfrastructure.
func (c *Container) initUseCases() {
	repos := c.repos
	log := c.log
	feed := c.feed
	states := c.resolver

	ucs := &allUseCases{}
	c.ucs = ucs

	ucs.branchSync = locationUsecases.NewBranchSync(repos.branchRepo, log)
	ucs.ensureMainUC = locationUsecases.NewEnsureMainUseCase(repos.locationRepo, c.txMgr, states, ucs.branchSync, feed, log)
	ucs.listLocationsUC = locationUsecases.NewListLocationsUseCase(repos.locationRepo, ucs.ensureMainUC, log)
	ucs.createLocationUC = locationUsecases.NewCreateLocationUseCase(repos.locationRepo, c.txMgr, states, states, ucs.branchSync, feed, log)
	ucs.updateLocationUC = locationUsecases.NewUpdateLocationUseCase(repos.locationRepo, c.txMgr, ucs.branchSync, feed, log)
	ucs.deleteLocationUC = locationUsecases.NewDeleteLocationUseCase(
		repos.locationRepo, repos.locationDataRepo, c.txMgr, states, ucs.branchSync, feed, log,
	)
	ucs.listBranchesUC = locationUsecases.NewListBranchesUseCase(repos.branchRepo, log)
	ucs.reconcileBranchUC = locationUsecases.NewReconcileBranchesUseCase(
		repos.tenantRepo, repos.locationRepo, repos.branchRepo, ucs.branchSync, log,
	)

	// Member writes go through the cache so local reads see them at once.
	members := c.memberCache
	ucs.listMembersUC = teamUsecases.NewListMembersUseCase(members, repos.invitationRepo, log)
	ucs.inviteMemberUC = teamUsecases.NewInviteMemberUseCase(members, repos.invitationRepo, repos.locationRepo, states, log)
	ucs.addMemberUC = teamUsecases.NewAddMemberUseCase(
		members, repos.invitationRepo, repos.locationRepo, states, states, feed, log,
	)
	ucs.updateMemberUC = teamUsecases.NewUpdateMemberUseCase(members, repos.tenantRepo, repos.locationRepo, feed, log)
	ucs.removeMemberUC = teamUsecases.NewRemoveMemberUseCase(members, repos.tenantRepo, states, feed, log)
	ucs.acceptInvitationUC = teamUsecases.NewAcceptInvitationUseCase(members, repos.invitationRepo, c.txMgr, states, feed, log)
	ucs.revokeInvitationUC = teamUsecases.NewRevokeInvitationUseCase(repos.invitationRepo, log)

	ucs.listTenantsUC = tenantUsecases.NewListTenantsUseCase(repos.tenantRepo, members, c.admins, log)
	ucs.createTenantUC = tenantUsecases.NewCreateTenantUseCase(
		repos.tenantRepo, members, repos.subscriptionRepo, repos.locationRepo,
		ucs.branchSync, c.txMgr, feed, log,
	)

	ucs.changePlanUC = subscriptionUsecases.NewChangePlanUseCase(repos.subscriptionRepo, states, feed, log)
	ucs.updateStatusUC = subscriptionUsecases.NewUpdateStatusUseCase(repos.subscriptionRepo, states, feed, log)
	ucs.startTrialUC = subscriptionUsecases.NewStartTrialUseCase(repos.subscriptionRepo, feed, log)
	ucs.expireTrialsUC = subscriptionUsecases.NewExpireTrialsUseCase(repos.subscriptionRepo, states, feed, log)
}
