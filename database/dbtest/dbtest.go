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

// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomoncle/commit-today/database"
	_ "github.com/tomoncle/commit-today/model"
	"github.com/uptrace/bun"
)

var seq atomic.Int64

// Open returns a fresh, fully migrated in-memory database private to t. The
// connection is closed when the test ends.
func Open(t testing.TB) *bun.DB {
	t.Helper()

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = fmt.Sprintf("memory:dbtest_%d", seq.Add(1))
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.ConnMaxLifetime = 0
	cfg.ConnMaxIdleTime = 0
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0
	cfg.ConnectTimeout = 5 * time.Second

	manager := database.NewDatabaseManager(cfg)
	manager.SetLogger(database.GetLogger())
	ctx := context.Background()
	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(func() { _ = manager.Disconnect() })

	if err := manager.RunMigrations(ctx, &database.DataMigrateConfig{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	db := manager.GetDB()
	db.RegisterModel(database.RegisteredModelInstances()...)
	return db
}
