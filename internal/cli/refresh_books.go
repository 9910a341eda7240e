package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/literattus/literattus/internal/config"
	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/books"
	"github.com/literattus/literattus/internal/metadata"
)

// RefreshBooksCommand re-fetches catalog attributes for every stored book.
// It runs the refresh inline rather than through the task queue, which is
// useful on hosts where the server is not running.
type RefreshBooksCommand struct {
	DatabasePath string
	APIKey       string
	Timeout      time.Duration
}

func NewRefreshBooksCommand() *RefreshBooksCommand {
	return &RefreshBooksCommand{}
}

// ParseFlags parses command line flags
func (cmd *RefreshBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("refresh-books", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.APIKey, "api-key", "", "Google Books API key (read from GOOGLE_BOOKS_API_KEY env var if empty)")
	fs.DurationVar(&cmd.Timeout, "timeout", 30*time.Minute, "Overall timeout for the refresh run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s refresh-books [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Refresh catalog metadata for all books in the library.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s refresh-books -db ./literattus.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.APIKey == "" {
		cmd.APIKey = os.Getenv("GOOGLE_BOOKS_API_KEY")
	}

	return nil
}

// Run executes the command
func (cmd *RefreshBooksCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	client := metadata.NewGoogleBooksClient(cmd.APIKey)
	refresher := metadata.NewRefresher(client, books.NewRepository(db.DB))

	summary, err := refresher.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh books: %w", err)
	}

	fmt.Printf("Refreshed %d of %d books (%d failed)\n",
		summary.Refreshed, summary.Total, summary.Failed)
	return nil
}
