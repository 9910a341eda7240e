// Package http wires the REST API: gin controllers over the repositories,
// JWT auth middleware and the background-task endpoints.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/demo"
	"github.com/literattus/literattus/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if cfg.DemoMode {
		router.Use(demo.NewMiddleware(true).Handler())
	}

	requireAuth := auth.RequireAuth(cfg.TokenIssuer)
	requireAdmin := auth.RequireRole(entities.RoleAdmin, entities.RoleSystemAdmin)

	health := NewHealthController(cfg.Database, cfg.Version)
	authCtl := NewAuthController(cfg.Users, cfg.TokenIssuer, cfg.BcryptCost)
	usersCtl := NewUsersController(cfg.Users, cfg.Stats, cfg.BcryptCost)
	booksCtl := NewBooksController(cfg.Books, cfg.Catalog, cfg.TaskClient, cfg.Covers)
	clubsCtl := NewClubsController(cfg.Clubs)
	clubBooksCtl := NewClubBooksController(cfg.ClubBooks, clubsCtl)
	progressCtl := NewProgressController(cfg.Progress)
	discussionsCtl := NewDiscussionsController(cfg.Discussions, cfg.Clubs)
	auditCtl := NewAuditController(cfg.Audit)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Auth endpoints
	router.POST("/api/auth/register", authCtl.Register)
	router.POST("/api/auth/login", authCtl.Login)
	router.POST("/api/auth/refresh", authCtl.Refresh)
	router.GET("/api/auth/me", requireAuth, authCtl.Me)

	api := router.Group("/api", requireAuth)

	// User endpoints
	api.GET("/users", usersCtl.ListUsers)
	api.GET("/users/:id", usersCtl.GetUser)
	api.PATCH("/users/:id", usersCtl.UpdateProfile)
	api.POST("/users/:id/password", usersCtl.ChangePassword)
	api.POST("/users/:id/deactivate", usersCtl.Deactivate)
	api.DELETE("/users/:id", usersCtl.DeleteUser)
	api.GET("/users/:id/stats", usersCtl.GetStats)

	// Book endpoints
	api.GET("/books/catalog/search", booksCtl.SearchCatalog)
	api.POST("/books", booksCtl.AddBook)
	api.GET("/books", booksCtl.ListBooks)
	api.GET("/books/:id", booksCtl.GetBook)
	api.GET("/books/:id/cover", booksCtl.GetCover)
	api.POST("/books/:id/refresh", requireAdmin, booksCtl.RefreshBook)
	api.DELETE("/books/:id", requireAdmin, booksCtl.DeleteBook)

	// Club endpoints
	api.POST("/clubs", clubsCtl.CreateClub)
	api.GET("/clubs", clubsCtl.ListClubs)
	api.GET("/clubs/:id", clubsCtl.GetClub)
	api.PATCH("/clubs/:id", clubsCtl.UpdateClub)
	api.DELETE("/clubs/:id", clubsCtl.DeleteClub)
	api.POST("/clubs/:id/join", clubsCtl.Join)
	api.POST("/clubs/:id/leave", clubsCtl.Leave)
	api.GET("/clubs/:id/members", clubsCtl.ListMembers)
	api.PUT("/clubs/:id/members/:userId/role", clubsCtl.SetMemberRole)

	// Club reading list endpoints
	api.POST("/clubs/:id/books", clubBooksCtl.AddBook)
	api.GET("/clubs/:id/books", clubBooksCtl.ListBooks)
	api.GET("/clubs/:id/books/current", clubBooksCtl.GetCurrent)
	api.PUT("/clubs/:id/books/:bookEntryId/status", clubBooksCtl.SetStatus)
	api.DELETE("/clubs/:id/books/:bookEntryId", clubBooksCtl.RemoveBook)

	// Reading progress endpoints
	api.POST("/progress", progressCtl.CreateProgress)
	api.GET("/progress", progressCtl.ListMyProgress)
	api.GET("/progress/:id", progressCtl.GetProgress)
	api.PATCH("/progress/:id", progressCtl.UpdateProgress)
	api.DELETE("/progress/:id", progressCtl.DeleteProgress)
	api.GET("/clubs/:id/progress", progressCtl.ListClubProgress)

	// Discussion endpoints
	api.POST("/clubs/:id/discussions", discussionsCtl.CreateDiscussion)
	api.GET("/clubs/:id/discussions", discussionsCtl.ListDiscussions)
	api.GET("/discussions/:id/replies", discussionsCtl.ListReplies)
	api.PATCH("/discussions/:id", discussionsCtl.UpdateDiscussion)
	api.DELETE("/discussions/:id", discussionsCtl.DeleteDiscussion)

	// Audit log endpoints
	admin := api.Group("", requireAdmin)
	admin.GET("/audit", auditCtl.ListEntries)
	admin.GET("/audit/history", auditCtl.GetHistory)
	admin.GET("/audit/:id", auditCtl.GetEntry)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksCtl := NewTasksController(cfg.TaskClient, cfg.Scheduler)
		admin.GET("/admin/tasks/types", tasksCtl.ListTaskTypes)
		admin.GET("/admin/tasks/schedule", tasksCtl.GetSchedule)
		admin.GET("/admin/tasks/:id", tasksCtl.GetTaskStatus)
		admin.POST("/admin/tasks/:type/run", tasksCtl.RunTask)
	}

	return router
}
