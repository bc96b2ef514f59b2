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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tomoncle/commit-today/api"
	"github.com/tomoncle/commit-today/config"
	"github.com/tomoncle/commit-today/database"
	_ "github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.Secret == "" {
			log.Warn("auth.secret is not set, signing tokens with the development secret")
			cfg.Auth.Secret = config.DevSecret
		}
		tokens, err := security.NewTokenManager(cfg.Auth.TokenConfig)
		if err != nil {
			return err
		}

		db, err := openDB(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.CloseDB(); err != nil {
				log.WithError(err).Error("close database")
			}
		}()

		router := api.NewRouter(api.Options{
			Auth:          service.NewAuthService(db, security.NewPasswordHasher(cfg.Auth.BcryptCost), tokens),
			Todo:          service.NewTodoService(db),
			Mode:          cfg.Server.Mode,
			CorsOrigins:   cfg.Server.CorsOrigins,
			SecureCookies: cfg.Server.SecureCookies,
		})

		srv := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.WithField("address", srv.Addr).Info("Server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			log.WithFields(logrus.Fields{"signal": sig.String()}).Info("Shutdown signal received, stopping server...")
		}

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		log.Info("Server exiting")
		return nil
	},
}
