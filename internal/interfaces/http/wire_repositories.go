package http

import (
	"gorm.io/gorm"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/profile"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/infrastructure/repository"
	"tillpoint/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	tenantRepo       tenant.Repository
	memberRepo       team.MemberRepository
	invitationRepo   team.InvitationRepository
	locationRepo     location.Repository
	locationDataRepo location.DataRepository
	branchRepo       location.BranchRepository
	subscriptionRepo subscription.Repository
	usageRepo        subscription.UsageReader
	profileRepo      profile.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		tenantRepo:       repository.NewTenantRepository(db, log),
		memberRepo:       repository.NewTeamMemberRepository(db, log),
		invitationRepo:   repository.NewInvitationRepository(db, log),
		locationRepo:     repository.NewLocationRepository(db, log),
		locationDataRepo: repository.NewLocationDataRepository(db, log),
		branchRepo:       repository.NewBranchRepository(db, log),
		subscriptionRepo: repository.NewSubscriptionRepository(db, log),
		usageRepo:        repository.NewUsageRepository(db, log),
		profileRepo:      repository.NewProfileRepository(db, log),
	}
}
