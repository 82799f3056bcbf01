package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/app"
	iauth "github.com/taskhive-io/taskhive/internal/auth"
	"github.com/taskhive-io/taskhive/internal/handlers"
	"github.com/taskhive-io/taskhive/internal/middleware"
	"github.com/taskhive-io/taskhive/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	membership, err := services.NewMembershipService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	workspaces, err := services.NewWorkspaceService(db, membership, audit)
	if err != nil {
		return nil, err
	}
	members, err := services.NewMemberService(db, membership, users, audit)
	if err != nil {
		return nil, err
	}
	projects, err := services.NewProjectService(db, membership, audit)
	if err != nil {
		return nil, err
	}
	tasks, err := services.NewTaskService(db, membership, users, audit)
	if err != nil {
		return nil, err
	}
	analytics, err := services.NewAnalyticsService(db, membership)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}

	authHandler := handlers.NewAuthHandler(users, jwt)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)

	workspaceHandler := handlers.NewWorkspaceHandler(workspaces, analytics)
	memberHandler := handlers.NewMemberHandler(members)
	auditHandler := handlers.NewAuditHandler(audit, membership)
	registerWorkspaceRoutes(api, workspaceHandler, memberHandler, auditHandler)

	projectHandler := handlers.NewProjectHandler(projects, analytics)
	registerProjectRoutes(api, projectHandler)

	taskHandler := handlers.NewTaskHandler(tasks)
	registerTaskRoutes(api, taskHandler)

	// Metrics endpoint
	registerMonitoringRoutes(r, cfg)

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
