package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/gate"
	locationUsecases "tillpoint/internal/application/location/usecases"
	"tillpoint/internal/application/locationswitch"
	subscriptionApp "tillpoint/internal/application/subscription"
	subscriptionUsecases "tillpoint/internal/application/subscription/usecases"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/infrastructure/auth"
	"tillpoint/internal/infrastructure/cache"
	"tillpoint/internal/infrastructure/config"
	"tillpoint/internal/infrastructure/metrics"
	infraPermission "tillpoint/internal/infrastructure/permission"
	"tillpoint/internal/infrastructure/pubsub"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/goroutine"
	"tillpoint/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases and handlers
// of one server process and tears the long-lived parts down in Shutdown.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Change feed. redisFeed is set only when redis is enabled.
	feed       events.Feed
	redisFeed  *pubsub.RedisChangeFeed
	feedCancel context.CancelFunc
	feedDone   chan struct{}

	// Authorization
	admins      *authorization.PlatformAdmins
	enforcer    *infraPermission.Enforcer
	authzEngine *authorization.Engine
	recorder    *metrics.Recorder
	resolver    *subscriptionApp.StateResolver
	memberCache *cache.MemberCache
	txMgr       *db.TransactionManager

	// Location selection
	registry   *locationswitch.Registry
	candidates *locationswitch.MemberCandidates

	jwtSvc           *auth.JWTService
	authMiddleware   *middleware.AuthMiddleware
	tenantMiddleware *middleware.TenantMiddleware
	authzMiddleware  *middleware.AuthzMiddleware
}

// NewContainer wires every component over db. The sections run in
// dependency order.
func NewContainer(database *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     database,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, feed, repositories, caches
	if err := c.initInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 2: Authorization - role table, engine, subscription state
	if err := c.initAuthorization(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 3: Use cases
	c.initUseCases()

	// Section 4: Location selection and gates
	c.initSelection()

	// Section 5: Middlewares and handlers
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.repos = newRepositories(c.db, log)
	c.txMgr = db.NewTransactionManager(c.db)
	c.memberCache = cache.NewMemberCache(c.repos.memberRepo, cfg.Cache.MemberSize, cfg.Cache.MemberTTL, log.Named("member-cache"))

	if !cfg.Redis.Enabled {
		log.Infow("redis disabled, change feed is process-local")
		c.feed = events.NewInMemoryFeed()
		return nil
	}

	client, err := initRedis(cfg, log)
	if err != nil {
		return err
	}
	c.redis = client

	feed := pubsub.NewRedisChangeFeed(client, cfg.Redis.Channel, log.Named("change-feed"))
	// Membership writes on other instances evict the local member cache.
	feed.Observe(func(ev events.ChangeEvent) {
		if ev.Kind == events.ChangeMembership && ev.UserID != "" {
			c.memberCache.Evict(ev.TenantID, ev.UserID)
		}
	})
	c.redisFeed = feed
	c.feed = feed

	ctx, cancel := context.WithCancel(context.Background())
	c.feedCancel = cancel
	c.feedDone = make(chan struct{})
	goroutine.SafeGo(log, "change-feed", func() {
		defer close(c.feedDone)
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("change feed stopped", "error", err)
		}
	})
	return nil
}

// initRedis creates the client and checks the connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())
	return client, nil
}

func (c *Container) initAuthorization() error {
	cfg := c.cfg
	log := c.log

	enforcer, err := infraPermission.NewEnforcer(c.db, permission.DefaultRoleTable(), log.Named("enforcer"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	c.enforcer = enforcer

	c.admins = authorization.NewPlatformAdmins(cfg.Authz.PlatformAdmins)
	c.recorder = metrics.NewRecorder()
	c.authzEngine = authorization.NewEngine(enforcer, log.Named("authz"),
		authorization.WithPlatformAdmins(c.admins),
		authorization.WithRecorder(c.recorder),
	)

	catalog := subscription.DefaultCatalog()
	if cfg.Authz.PlanCatalogFile != "" {
		catalog, err = subscription.LoadCatalog(cfg.Authz.PlanCatalogFile)
		if err != nil {
			return fmt.Errorf("failed to load plan catalog: %w", err)
		}
		log.Infow("plan catalog loaded", "path", cfg.Authz.PlanCatalogFile)
	}

	// An untyped nil keeps the resolver from caching when redis is off.
	var stateCache subscriptionApp.StateCache
	if c.redis != nil {
		stateCache = cache.NewRedisSubscriptionStateCache(c.redis, cfg.Cache.SubscriptionTTL)
	}
	c.resolver = subscriptionApp.NewStateResolver(
		c.repos.subscriptionRepo, c.repos.usageRepo, catalog, stateCache, log.Named("subscription-state"),
	)
	return nil
}

func (c *Container) initSelection() {
	c.candidates = locationswitch.NewMemberCandidates(c.repos.locationRepo, c.memberCache)
	c.registry = locationswitch.NewRegistry(c.repos.profileRepo, c.candidates, c.feed, c.log.Named("location-switch"))
}

// newGateSession is the handlers.SessionFactory for the gate stream.
func (c *Container) newGateSession(tenantID string, actor authorization.Actor) *gate.Session {
	return gate.NewSession(tenantID, actor, c.authzEngine, c.memberCache, c.resolver, c.feed,
		c.log.Named("gate"),
		gate.WithWarningThreshold(c.cfg.Authz.UsageWarningThreshold),
	)
}

// Engine returns the gin engine with routes registered by SetupRoutes.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// ReconcileBranchesJob rebuilds the branch projection for every tenant.
// Used by the worker.
func (c *Container) ReconcileBranchesJob() *locationUsecases.ReconcileBranchesUseCase {
	return c.ucs.reconcileBranchUC
}

// ExpireTrialsJob moves lapsed trials to expired. Used by the worker.
func (c *Container) ExpireTrialsJob() *subscriptionUsecases.ExpireTrialsUseCase {
	return c.ucs.expireTrialsUC
}

// Shutdown stops the feed relay, disposes selection machines and closes
// redis. Safe on a partially built container.
func (c *Container) Shutdown() {
	if c.registry != nil {
		c.registry.Close()
	}

	if c.feedCancel != nil {
		c.feedCancel()
		<-c.feedDone
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
		}
	}
}
