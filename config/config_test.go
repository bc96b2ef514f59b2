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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.CorsOrigins)
	assert.Same(t, &cfg.Database, cfg.ConfigLoader())
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9000
database:
  connection:
    type: postgres
    dbname: todo
    slow_query_time: 500ms
auth:
  secret: from-file
  access_ttl: 10m
`), 0o644))
	t.Setenv("TODO_AUTH_SECRET", "from-env")

	v := New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(v, cmd)
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "debug"))

	cfg, err := Load(v, file)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, "todo", cfg.Database.ConnectionConfig.DBName)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsMissingExplicitFileAndBadPort(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Chdir(t.TempDir())
	t.Setenv("TODO_SERVER_PORT", "70000")
	_, err = Load(New(), "")
	assert.Error(t, err)
}
