// Package cli implements the maintenance commands that run outside the
// HTTP server.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/config"
	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/users"
	"github.com/literattus/literattus/internal/entities"
)

// CreateAdminCommand creates an administrator account.
type CreateAdminCommand struct {
	Email        string
	Username     string
	Password     string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address for the admin account (required)")
	fs.StringVar(&cmd.Username, "username", "", "Username for the admin account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (read from ADMIN_PASSWORD env var if empty)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@example.com -username admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" || cmd.Username == "" {
		return fmt.Errorf("email and username are required")
	}
	if cmd.Password == "" {
		cmd.Password = os.Getenv("ADMIN_PASSWORD")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password is required (use -password or ADMIN_PASSWORD)")
	}

	return nil
}

// Run executes the command
func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	hash, err := auth.HashPassword(cmd.Password, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	repo := users.NewRepository(db.DB)
	admin := &entities.User{
		Email:        cmd.Email,
		Username:     cmd.Username,
		PasswordHash: hash,
		Role:         entities.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.Create(admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created admin account %s (ID %d)\n", cmd.Username, admin.ID)
	return nil
}
