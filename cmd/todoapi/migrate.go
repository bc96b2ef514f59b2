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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tomoncle/commit-today/database"
	_ "github.com/tomoncle/commit-today/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := migrationManager(cmd)
		if err != nil {
			return err
		}
		defer database.CloseDB()
		return mm.RunMigrations(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := migrationManager(cmd)
		if err != nil {
			return err
		}
		defer database.CloseDB()
		applied, err := mm.GetAppliedMigrations(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
		for _, m := range applied {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down VERSION",
	Short: "Roll back one applied migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := migrationManager(cmd)
		if err != nil {
			return err
		}
		defer database.CloseDB()
		return mm.RollbackMigration(cmd.Context(), args[0])
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateDownCmd)
}

func migrationManager(cmd *cobra.Command) (*database.MigrationManager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := openDB(cmd.Context(), cfg, false)
	if err != nil {
		return nil, err
	}
	return database.NewMigrationManager(db, database.GetLogger(), &cfg.Database.DataMigrateConfig), nil
}
