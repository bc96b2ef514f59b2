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

package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tomoncle/commit-today/database"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/utils"
)

const APIPrefix = "/api/v1"

// Options wires the router to its services.
type Options struct {
	Auth          *service.AuthService
	Todo          *service.TodoService
	Mode          string // gin mode: debug, release, test
	CorsOrigins   []string
	SecureCookies bool
	// Health defaults to database.GetHealthStatus.
	Health func(ctx context.Context) *database.HealthStatus
	// DBStats defaults to database.GetDatabaseStats.
	DBStats func() *database.DBStats
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Health == nil {
		opts.Health = database.GetHealthStatus
	}
	if opts.DBStats == nil {
		opts.DBStats = database.GetDatabaseStats
	}
	metrics := NewMetrics(opts.DBStats)

	r := gin.New()
	r.Use(requestLogger(utils.NewLogger("API")))
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())
	if len(opts.CorsOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.CorsOrigins)))
	}
	r.NoRoute(NotFoundHandler)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ping": "pong"})
	})
	r.GET("/health", func(c *gin.Context) {
		status := opts.Health(c.Request.Context())
		if !status.Healthy {
			c.JSON(http.StatusServiceUnavailable, Response{OK: false, Message: "Database Unavailable", Data: status})
			return
		}
		okResponse(c, status)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	cookies := cookieWriter{secure: opts.SecureCookies}
	external := r.Group(APIPrefix + "/external")
	registerAuthRoutes(external.Group("/auth"), &authHandler{svc: opts.Auth, cookies: cookies})
	todo := external.Group("/todo", RequireAuth(opts.Auth))
	registerTodoRoutes(todo, &todoHandler{svc: opts.Todo})
	return r
}

func registerAuthRoutes(g *gin.RouterGroup, h *authHandler) {
	g.POST("/sign-up", h.signUp)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.GET("/me", RequireAuth(h.svc), h.me)
}

func registerTodoRoutes(g *gin.RouterGroup, h *todoHandler) {
	repos := g.Group("/todo-repos")
	repos.POST("", h.createRepo)
	repos.GET("", h.listRepos)
	repos.GET("/:repo_id", h.getRepo)
	repos.PUT("/:repo_id", h.updateRepo)
	repos.DELETE("/:repo_id", h.deleteRepo)

	dailies := repos.Group("/:repo_id/daily-todos")
	dailies.POST("", h.createDailyTodo)
	dailies.GET("", h.listDailyTodos)
	dailies.GET("/:date", h.getDailyTodo)
	dailies.DELETE("/:date", h.deleteDailyTodo)

	tasks := dailies.Group("/:date/tasks")
	tasks.POST("", h.createTask)
	tasks.GET("", h.listTasks)
	tasks.PATCH("/:task_id", h.updateTask)
	tasks.DELETE("/:task_id", h.deleteTask)
}

// corsConfig allows the listed origins with credentials. A "*" entry echoes
// the request origin; credentialed responses may not carry a literal "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
