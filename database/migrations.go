/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MigrationManager applies versioned schema migrations and records each
// applied version in the migrations table.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	cfg    DataMigrateConfig
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// ModelIndex is a secondary index created alongside a model's table.
type ModelIndex struct {
	Name    string
	Columns []string
	Unique  bool
}

// IndexedModel is implemented by models that need secondary indexes.
type IndexedModel interface {
	Indexes() []ModelIndex
}

// NewMigrationManager returns a manager for db. A nil cfg disables foreign keys.
func NewMigrationManager(db *bun.DB, logger Logger, cfg *DataMigrateConfig) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	mm := &MigrationManager{db: db, logger: logger}
	if cfg != nil {
		mm.cfg = *cfg
	}
	return mm
}

// RunMigrations creates the migrations table if needed and applies pending
// migrations in ascending version order. Query logging is muted unless
// BUNDEBUG_MIGRATION is set.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	for _, migration := range mm.getAllMigrations() {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}
	mm.logger.Info("Database migrations completed!")
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create base table structure",
			Up:          mm.createBaseTables,
			Down:        mm.dropBaseTables,
		},
	}
	// sqlite cannot add constraints to existing tables
	if mm.cfg.EnableForeignKey && mm.db.Dialect().Name() != dialect.SQLite {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Add table foreign key constraints",
			Up:          mm.addForeignKeys,
			Down:        mm.dropForeignKeys,
		})
	}
	slices.SortFunc(migrations, func(a, b MigrationItem) int {
		return strings.Compare(a.Version, b.Version)
	})
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&Migration{
				Version:     migration.Version,
				Name:        migration.Name,
				AppliedAt:   time.Now(),
				Description: migration.Description,
			}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
		indexed, ok := model.(IndexedModel)
		if !ok {
			continue
		}
		for _, idx := range indexed.Indexes() {
			q := db.NewCreateIndex().Model(model).Index(idx.Name).Column(idx.Columns...)
			if idx.Unique {
				q = q.Unique()
			}
			if _, err := q.Exec(ctx); err != nil {
				if is, kind := IsSqlError(err); is && kind == ExistIndexErr {
					continue
				}
				return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

func (mm *MigrationManager) dropBaseTables(ctx context.Context, db bun.IDB) error {
	models := RegisteredModelInstances()
	slices.Reverse(models)
	for _, model := range models {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %T: %w", model, err)
		}
	}
	return nil
}

func (mm *MigrationManager) foreignKeyManager() (*ForeignKeyManager, error) {
	if mm.cfg.ForeignKeyFile == "" {
		return NewForeignKeyManager(mm.logger), nil
	}
	fkManager, err := NewConfigurableForeignKeyManager(mm.logger, mm.cfg.ForeignKeyFile)
	if err != nil {
		return nil, err
	}
	if errs := fkManager.ValidateConstraints(); len(errs) > 0 {
		for _, err := range errs {
			mm.logger.Debug("Foreign key constraint validation failed", "error", err.Error())
		}
		return nil, fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	mm.logger.Debug("Managing foreign key constraints using config file", "config_path", mm.cfg.ForeignKeyFile)
	return fkManager.ForeignKeyManager, nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	fkManager, err := mm.foreignKeyManager()
	if err != nil {
		return err
	}
	return fkManager.AddAllForeignKeys(ctx, db)
}

func (mm *MigrationManager) dropForeignKeys(ctx context.Context, db bun.IDB) error {
	fkManager, err := mm.foreignKeyManager()
	if err != nil {
		return err
	}
	for _, fk := range fkManager.ListAllConstraints() {
		if err := fkManager.RemoveForeignKey(ctx, db, fk.Table, fk.GenerateConstraintName()); err != nil {
			mm.logger.Warn("Failed to drop foreign key", "constraint", fk.GenerateConstraintName(), "error", err)
		}
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

// RollbackMigration reverts an applied migration and removes its record.
// Rolling back a version that was never applied is a no-op.
func (mm *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	idx := slices.IndexFunc(mm.getAllMigrations(), func(m MigrationItem) bool { return m.Version == version })
	if idx < 0 {
		return fmt.Errorf("unknown migration version: %s", version)
	}
	migration := mm.getAllMigrations()[idx]

	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", version).
		Exists(ctx)
	if err != nil || !exists {
		return err
	}

	return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if migration.Down != nil {
			if err := migration.Down(ctx, tx); err != nil {
				return err
			}
		}
		_, err := tx.NewDelete().
			Model((*Migration)(nil)).
			Where("version = ?", version).
			Exec(ctx)
		if err == nil {
			mm.logger.Info("Migration rolled back", "version", version, "name", migration.Name)
		}
		return err
	})
}
