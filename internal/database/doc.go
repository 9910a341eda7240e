// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── errors.go        # Store error taxonomy + driver error translation
//	├── users/           # User accounts
//	├── books/           # Book catalog (external catalog identifiers)
//	├── clubs/           # Clubs and memberships, explicit cascade deletes
//	├── clubbooks/       # Club reading-list associations
//	├── progress/        # Reading progress with transactional audit logging
//	├── discussions/     # Threaded club discussions
//	├── audit/           # Audit-log read access
//	└── stats/           # Per-user reading statistics aggregation
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./literattus.db")
//
//	// Create domain-specific repositories
//	usersRepo := users.NewRepository(db.DB)
//	progressRepo := progress.NewRepository(db.DB)
//
//	// Use repositories
//	user, err := usersRepo.GetByID(123)
//	rec, err := progressRepo.Create(input)
//
// # Error Taxonomy
//
// Repositories surface errors through the taxonomy in errors.go:
//
//   - ErrNotFound: an update/delete/lookup targeted a nonexistent row
//   - UniqueConstraintError: a write collided with a uniqueness invariant
//   - ForeignKeyError: a write referenced a nonexistent row
//   - ErrAuditWrite: an audit append failed and the mutation was rolled back
//
// Constraint checks happen in the storage engine, so concurrent writers
// racing on the same unique pair get exactly one success.
//
// # Adding a New Domain
//
// To add a new domain:
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Translate write errors through database.TranslateError
package database
