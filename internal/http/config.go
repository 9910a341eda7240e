package http

import (
	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/covers"
	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/database/books"
	"github.com/literattus/literattus/internal/database/clubbooks"
	"github.com/literattus/literattus/internal/database/clubs"
	"github.com/literattus/literattus/internal/database/discussions"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/database/stats"
	"github.com/literattus/literattus/internal/database/users"
	"github.com/literattus/literattus/internal/metadata"
	"github.com/literattus/literattus/internal/scheduler"
	"github.com/literattus/literattus/internal/tasks"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Repositories
	Users       *users.Repository
	Books       *books.Repository
	Clubs       *clubs.Repository
	ClubBooks   *clubbooks.Repository
	Progress    *progress.Repository
	Discussions *discussions.Repository
	Stats       *stats.Repository
	Audit       *audit.Repository

	// Authentication
	TokenIssuer *auth.TokenIssuer
	BcryptCost  int

	// External catalog
	Catalog   metadata.CatalogProvider
	Refresher *metadata.Refresher
	Covers    *covers.Cache

	// Background work (optional)
	TaskClient *tasks.Client
	Scheduler  *scheduler.Scheduler

	// Application info
	Version  string
	DemoMode bool
}
