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

// Package config loads the service configuration from file, TODO_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tomoncle/commit-today/database"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/utils"
)

const (
	EnvPrefix = "TODO"
	// DevSecret signs tokens when no secret is configured. Never use it in
	// production.
	DevSecret = "commit-today-insecure-dev-secret"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	CorsOrigins     []string      `mapstructure:"cors_origins"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AuthConfig struct {
	security.TokenConfig `mapstructure:",squash"`
	BcryptCost           int `mapstructure:"bcrypt_cost"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Server   ServerConfig     `mapstructure:"server"`
	Database database.Config  `mapstructure:"database"`
	Auth     AuthConfig       `mapstructure:"auth"`
	Log      utils.LogOptions `mapstructure:"log"`
}

var _ database.AbstractDatabaseConfigProvider = (*AppConfig)(nil)

// ConfigLoader hands the database section to database.InitDB.
func (c *AppConfig) ConfigLoader() *database.Config {
	return &c.Database
}

// New returns a viper instance with defaults and environment binding set up.
// TODO_SERVER_PORT overrides server.port, and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	conn := database.DefaultConnectionConfig()
	v.SetDefault("database.connection.type", conn.Type)
	v.SetDefault("database.connection.host", "127.0.0.1")
	v.SetDefault("database.connection.port", 5432)
	v.SetDefault("database.connection.username", "")
	v.SetDefault("database.connection.password", "")
	v.SetDefault("database.connection.dbname", conn.DBName)
	v.SetDefault("database.connection.sslmode", "disable")
	v.SetDefault("database.connection.max_idle_conns", conn.MaxIdleConns)
	v.SetDefault("database.connection.max_open_conns", conn.MaxOpenConns)
	v.SetDefault("database.connection.conn_max_lifetime", conn.ConnMaxLifetime)
	v.SetDefault("database.connection.conn_max_idle_time", conn.ConnMaxIdleTime)
	v.SetDefault("database.connection.connect_timeout", conn.ConnectTimeout)
	v.SetDefault("database.connection.read_timeout", conn.ReadTimeout)
	v.SetDefault("database.connection.write_timeout", conn.WriteTimeout)
	v.SetDefault("database.connection.enable_reconnect", conn.EnableReconnect)
	v.SetDefault("database.connection.reconnect_interval", conn.ReconnectInterval)
	v.SetDefault("database.connection.max_reconnect_tries", conn.MaxReconnectTries)
	v.SetDefault("database.connection.health_check_interval", conn.HealthCheckInterval)
	v.SetDefault("database.connection.enable_query_log", conn.EnableQueryLog)
	v.SetDefault("database.connection.slow_query_time", conn.SlowQueryTime)
	v.SetDefault("database.migrate.enable_migrate_on_startup", true)
	v.SetDefault("database.migrate.enable_foreign_key", true)
	v.SetDefault("database.migrate.foreign_key_file", "")

	token := security.DefaultTokenConfig()
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.algorithm", token.Algorithm)
	v.SetDefault("auth.issuer", token.Issuer)
	v.SetDefault("auth.access_ttl", token.AccessTTL)
	v.SetDefault("auth.refresh_ttl", token.RefreshTTL)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_enabled", false)
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.max_age_days", 7)
}

// BindFlags registers the persistent flags of cmd and binds them to v.
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("host", "0.0.0.0", "address to listen on")
	flags.Int("port", 8000, "port to listen on")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("db-type", "sqlite", "database type: sqlite, postgres, mysql")
	flags.String("db-name", "commit-today", "database name, or sqlite file name")

	_ = v.BindPFlag("server.host", flags.Lookup("host"))
	_ = v.BindPFlag("server.port", flags.Lookup("port"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("database.connection.type", flags.Lookup("db-type"))
	_ = v.BindPFlag("database.connection.dbname", flags.Lookup("db-name"))
}

// Load reads cfgFile, or ./config.yaml when cfgFile is empty, and decodes the
// merged configuration. A missing default file is not an error.
func Load(v *viper.Viper, cfgFile string) (*AppConfig, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	return &cfg, nil
}
