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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tomoncle/commit-today/config"
	"github.com/tomoncle/commit-today/database"
	"github.com/tomoncle/commit-today/utils"
	"github.com/uptrace/bun"
)

var (
	cfgFile string
	v       = config.New()
	log     = utils.NewLogger("MAIN")
)

var rootCmd = &cobra.Command{
	Use:          "todoapi",
	Short:        "Commit Today TODO API server",
	Long:         `Backend of Commit Today: user accounts, todo repos, daily todos and their tasks.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	config.BindFlags(v, rootCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig reads the configuration and applies its logging section.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	utils.ConfigureLogging(cfg.Log)
	return cfg, nil
}

// openDB connects the global database. Migrations on startup follow the
// configuration unless migrate is false.
func openDB(ctx context.Context, cfg *config.AppConfig, migrate bool) (*bun.DB, error) {
	dbCfg := *cfg.ConfigLoader()
	if !migrate {
		dbCfg.DataMigrateConfig.EnableMigrateOnStartup = false
	}
	db, err := database.InitDB(ctx, &dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return db, nil
}
