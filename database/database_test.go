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

package database_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/commit-today/database"
	"github.com/tomoncle/commit-today/database/dbtest"
	"github.com/tomoncle/commit-today/model"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) SetLevel(database.LogLevel)         {}
func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record(msg) }

func (l *recordingLogger) contains(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == msg {
			return true
		}
	}
	return false
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", database.SQLiteDSN(":memory:"))
	assert.Equal(t, "file:unit?mode=memory&cache=shared", database.SQLiteDSN("memory:unit"))
	assert.Equal(t, "todo.db", database.SQLiteDSN("todo"))
	assert.Equal(t, "todo.db", database.SQLiteDSN("todo.db"))
}

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		err  error
		is   bool
		kind database.SQLError
	}{
		{nil, false, database.UnknownErr},
		{sql.ErrNoRows, true, database.NoRowsErr},
		{fmt.Errorf("wrapped: %w", sql.ErrNoRows), true, database.NoRowsErr},
		{&pq.Error{Code: "23505"}, true, database.DuplicateKeyErr},
		{&pq.Error{Code: "23503"}, true, database.ForeignKeyViolationErr},
		{&pq.Error{Code: "42P01"}, true, database.NoTableErr},
		{&mysql.MySQLError{Number: 1062}, true, database.DuplicateKeyErr},
		{&mysql.MySQLError{Number: 1452}, true, database.ForeignKeyViolationErr},
		{errors.New("UNIQUE constraint failed: users.email"), true, database.DuplicateKeyErr},
		{errors.New("no such table: users"), true, database.NoTableErr},
		{errors.New("index idx_todo_repos_user_id already exists"), true, database.ExistIndexErr},
		{errors.New("something else"), false, database.UnknownErr},
	}
	for _, c := range cases {
		is, kind := database.IsSqlError(c.err)
		assert.Equal(t, c.is, is, "%v", c.err)
		assert.Equal(t, c.kind, kind, "%v", c.err)
	}

	assert.True(t, database.IsDuplicateKey(&pq.Error{Code: "23505"}))
	assert.False(t, database.IsDuplicateKey(nil))
	assert.True(t, database.IsForeignKeyViolation(&mysql.MySQLError{Number: 1451}))
}

func TestForeignKeyConstraintSQL(t *testing.T) {
	fk := database.ForeignKeyConstraint{
		Table:           "todo_repos",
		Column:          "user_id",
		ReferenceTable:  "users",
		ReferenceColumn: "id",
		OnDelete:        "cascade",
	}
	assert.Equal(t, "fk_todo_repos_user_id", fk.GenerateConstraintName())
	assert.Equal(t, "ALTER TABLE todo_repos ADD CONSTRAINT fk_todo_repos_user_id FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE", fk.GenerateSQL())

	composite := database.DefaultForeignKeyConstraints()[2]
	assert.Equal(t, "ALTER TABLE daily_todo_tasks ADD CONSTRAINT fk_daily_todo_tasks_daily_todo FOREIGN KEY (todo_repo_id, date) REFERENCES daily_todos(todo_repo_id, date) ON DELETE CASCADE", composite.GenerateSQL())

	manager := database.NewForeignKeyManager(nil)
	assert.Empty(t, manager.ValidateConstraints())
	assert.Len(t, manager.GetConstraintsByTable("DAILY_TODOS"), 1)
	assert.Len(t, manager.ListAllConstraints(), 3)
}

func TestConfigurableForeignKeyManager(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "fk.yaml")

	fallback, err := database.NewConfigurableForeignKeyManager(nil, path)
	require.NoError(t, err)
	assert.Equal(t, database.DefaultForeignKeyConstraints(), fallback.ListAllConstraints())
	assert.Error(t, fallback.ReloadConfig())

	require.NoError(t, fallback.ExportToConfig(path))
	loaded, err := database.NewConfigurableForeignKeyManager(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.GetConfigPath())
	assert.Equal(t, database.DefaultForeignKeyConstraints(), loaded.ListAllConstraints())
	require.NoError(t, loaded.ReloadConfig())

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte(`
foreign_keys:
  - table: a
    column: x, y
    reference_table: b
    reference_column: id
    on_delete: explode
`), 0o644))
	m, err := database.NewConfigurableForeignKeyManager(nil, invalid)
	require.NoError(t, err)
	require.Len(t, m.ListAllConstraints(), 1)
	assert.Equal(t, "fk_a_x_y", m.ListAllConstraints()[0].GenerateConstraintName())
	assert.Len(t, m.ValidateConstraints(), 2)
}

func TestMigrationsApplyAndRollback(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	logger := &recordingLogger{}
	mm := database.NewMigrationManager(db, logger, &database.DataMigrateConfig{EnableForeignKey: true})

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1, "sqlite skips the foreign key migration")
	assert.Equal(t, "001", applied[0].Version)
	assert.Equal(t, "create_base_tables", applied[0].Name)

	require.NoError(t, mm.RunMigrations(ctx))
	applied, err = mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)

	assert.Error(t, mm.RollbackMigration(ctx, "999"))
	require.NoError(t, mm.RollbackMigration(ctx, "001"))
	assert.True(t, logger.contains("Migration rolled back"))
	_, err = db.NewSelect().Model((*model.User)(nil)).Count(ctx)
	assert.Error(t, err)
	require.NoError(t, mm.RollbackMigration(ctx, "001"))

	require.NoError(t, mm.RunMigrations(ctx))
	assert.True(t, logger.contains("Migration executed successfully"))
	n, err := db.NewSelect().Model((*model.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueryHooks(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	var buf bytes.Buffer
	db.AddQueryHook(database.NewQueryHook("COMMIT_TODAY_TEST_QUERY_LOG", true, true, &buf))
	logger := &recordingLogger{}
	db.AddQueryHook(database.NewSlowQueryHook(0, logger))

	var n int
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(ctx, &n))
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "SELECT 1")
	assert.Contains(t, buf.String(), "[BUN]")
	assert.True(t, logger.contains("Slow query detected"))

	buf.Reset()
	database.EnableBunSqlSilent(true)
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(ctx, &n))
	database.EnableBunSqlSilent(false)
	assert.Empty(t, buf.String())
}

type systemConfig struct {
	cfg database.Config
}

func (c *systemConfig) ConfigLoader() *database.Config { return &c.cfg }

func TestInitDBGlobal(t *testing.T) {
	conn := database.DefaultConnectionConfig()
	conn.DBName = "memory:global_conn_test"
	conn.MaxOpenConns = 1
	conn.HealthCheckInterval = 0
	var provider database.AbstractDatabaseConfigProvider = &systemConfig{cfg: database.Config{
		ConnectionConfig:  *conn,
		DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
	}}

	ctx := context.Background()
	db, err := database.InitDB(ctx, provider.ConfigLoader())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })
	assert.Same(t, db, database.GetDB())

	status := database.GetHealthStatus(ctx)
	assert.True(t, status.Healthy, status.LastError)
	assert.Equal(t, 1, database.GetDatabaseStats().MaxOpenConns)
	require.NoError(t, database.RunMigrations(ctx))

	_, err = db.NewInsert().Model(&model.User{Email: "a@b.c", Password: "x", Username: "a"}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&model.User{Email: "a@b.c", Password: "x", Username: "a"}).Exec(ctx)
	assert.True(t, database.IsDuplicateKey(err), "%v", err)

	_, err = database.InitDB(ctx, nil)
	assert.Error(t, err)
}
