// Package entrypoint assembles the application: database, repositories,
// task queue, scheduler and HTTP server, plus graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/audit"
	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/config"
	"github.com/literattus/literattus/internal/covers"
	"github.com/literattus/literattus/internal/database"
	auditdb "github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/database/books"
	"github.com/literattus/literattus/internal/database/clubbooks"
	"github.com/literattus/literattus/internal/database/clubs"
	"github.com/literattus/literattus/internal/database/discussions"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/database/stats"
	"github.com/literattus/literattus/internal/database/users"
	http_controllers "github.com/literattus/literattus/internal/http"
	"github.com/literattus/literattus/internal/metadata"
	"github.com/literattus/literattus/internal/scheduler"
	"github.com/literattus/literattus/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout, calling onShutdown first.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before refusing new requests
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires all components and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Literattus v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("AUTH_JWT_SECRET is not set")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	clubRepo := clubs.NewRepository(db.DB)
	clubBookRepo := clubbooks.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)
	discussionRepo := discussions.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	catalog := metadata.NewGoogleBooksClient(cfg.GoogleBooks.APIKey)
	refresher := metadata.NewRefresher(catalog, bookRepo)

	coverCache, err := covers.NewCache(cfg.Covers.CacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	// Task queue for catalog refreshes and audit retention
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}

		var archiver tasks.AuditArchiver
		if cfg.Audit.ArchiveDir != "" {
			archiver = audit.NewArchiver(cfg.Audit.ArchiveDir)
		}
		taskClient.Register(
			tasks.NewRefreshBookQueue(refresher),
			tasks.NewRefreshAllBooksQueue(refresher),
			tasks.NewPruneAuditLogQueue(auditRepo, archiver),
		)
		go taskClient.Start(context.Background())
	} else {
		log.Printf("Task queue disabled; catalog refreshes run only on demand")
	}

	var sched *scheduler.Scheduler
	if taskClient != nil {
		jobs := []scheduler.Job{
			{
				Name:     "prune_audit_log",
				Schedule: cfg.Audit.PruneSchedule,
				Task:     tasks.PruneAuditLogTask{RetentionDays: cfg.Audit.RetentionDays},
			},
		}
		if cfg.CatalogRefresh.Enabled {
			jobs = append(jobs, scheduler.Job{
				Name:     "refresh_all_books",
				Schedule: cfg.CatalogRefresh.Schedule,
				Task:     tasks.RefreshAllBooksTask{},
			})
		}

		sched = scheduler.New(taskClient, jobs)
		if err := sched.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    db,
		Users:       userRepo,
		Books:       bookRepo,
		Clubs:       clubRepo,
		ClubBooks:   clubBookRepo,
		Progress:    progressRepo,
		Discussions: discussionRepo,
		Stats:       statsRepo,
		Audit:       auditRepo,
		TokenIssuer: issuer,
		BcryptCost:  cfg.Auth.BcryptCost,
		Catalog:     catalog,
		Refresher:   refresher,
		Covers:      coverCache,
		TaskClient:  taskClient,
		Scheduler:   sched,
		Version:     version,
		DemoMode:    cfg.Global.DemoMode,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if sched != nil {
			sched.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task queue: %v", err)
			}
		}
	})
}
