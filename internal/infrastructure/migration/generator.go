package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"

	"tillpoint/internal/shared/logger"
)

var migrateFilePattern = regexp.MustCompile(`^(\d+)_.+\.(up|down)\.sql$`)

// Generator writes empty migration files for both script sets so they
// stay in step. scriptsPath is the source directory holding goose/ and
// migrate/.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
	}
}

func (g *Generator) CreateMigration(name string) error {
	gooseDir := filepath.Join(g.scriptsPath, "goose")
	migrateDir := filepath.Join(g.scriptsPath, "migrate")
	for _, dir := range []string{gooseDir, migrateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create scripts directory: %w", err)
		}
	}

	goose.SetSequential(true)
	if err := goose.Create(nil, gooseDir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create goose migration: %w", err)
	}

	next, err := nextVersion(migrateDir)
	if err != nil {
		return err
	}
	base := fmt.Sprintf("%06d_%s", next, name)
	upPath := filepath.Join(migrateDir, base+".up.sql")
	downPath := filepath.Join(migrateDir, base+".down.sql")

	created := time.Now().Format("2006-01-02 15:04:05")
	if err := os.WriteFile(upPath, []byte(fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", name, created)), 0o644); err != nil {
		return fmt.Errorf("failed to create up migration file: %w", err)
	}
	if err := os.WriteFile(downPath, []byte(fmt.Sprintf("-- Rollback Migration: %s\n-- Created: %s\n\n", name, created)), 0o644); err != nil {
		return fmt.Errorf("failed to create down migration file: %w", err)
	}

	g.logger.Infow("migration files created successfully",
		"goose_dir", gooseDir,
		"up_file", upPath,
		"down_file", downPath)
	return nil
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scripts directory: %w", err)
	}
	highest := 0
	for _, e := range entries {
		m := migrateFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}
