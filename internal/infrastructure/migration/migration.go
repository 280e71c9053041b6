package migration

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/shared/logger"
)

const (
	StrategyGoose         = "goose"
	StrategyGolangMigrate = "golang-migrate"
	StrategyAutoMigrate   = "automigrate"
)

// ErrNotReversible is returned for down/status on automigrate.
var ErrNotReversible = errors.New("migration strategy does not track versions")

// Manager runs one strategy against a database.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy by name. sqlite databases always use
// automigrate because the versioned scripts are MySQL DDL.
func NewManager(name, driver string, log logger.Interface) (*Manager, error) {
	log = log.With("component", "migration.manager")

	if driver == "sqlite" && name != StrategyAutoMigrate {
		log.Warnw("versioned migrations are mysql only, using automigrate", "requested", name)
		name = StrategyAutoMigrate
	}

	var strategy Strategy
	switch name {
	case StrategyGoose:
		strategy = NewGooseStrategy(log)
	case StrategyGolangMigrate:
		strategy = NewGolangMigrateStrategy(log)
	case StrategyAutoMigrate:
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		return nil, fmt.Errorf("unknown migration strategy: %s", name)
	}

	return &Manager{strategy: strategy, logger: log}, nil
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{strategy: strategy, logger: log.With("component", "migration.manager")}
}

func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) Down(db *gorm.DB, steps int) error {
	r, ok := m.strategy.(Reversible)
	if !ok {
		return fmt.Errorf("%s: %w", m.strategy.GetName(), ErrNotReversible)
	}
	if steps < 1 {
		steps = 1
	}
	return r.MigrateDown(db, steps)
}

func (m *Manager) Status(db *gorm.DB) (string, error) {
	r, ok := m.strategy.(Reversible)
	if !ok {
		return "", fmt.Errorf("%s: %w", m.strategy.GetName(), ErrNotReversible)
	}
	return r.Status(db)
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
