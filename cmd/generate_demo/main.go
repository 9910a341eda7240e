// Command generate_demo creates a demo database with sample users, clubs
// and public domain books.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/books"
	"github.com/literattus/literattus/internal/database/clubbooks"
	"github.com/literattus/literattus/internal/database/clubs"
	"github.com/literattus/literattus/internal/database/discussions"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/database/users"
	"github.com/literattus/literattus/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// All demo accounts share this password so visitors can log in.
const demoPassword = "demo-password-123"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	demoUsers := createUsers(db)
	demoBooks := createBooks(db)
	club := createClub(db, demoUsers, demoBooks)
	createProgress(db, demoUsers, demoBooks, club)
	createDiscussions(db, demoUsers, demoBooks, club)

	log.Println("Demo database generated successfully!")
	log.Printf("All demo accounts use the password %q", demoPassword)
}

func createUsers(db *database.Database) []*entities.User {
	hash, err := auth.HashPassword(demoPassword, 4)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	repo := users.NewRepository(db.DB)
	seed := []*entities.User{
		{Email: "ada@example.com", Username: "ada", FirstName: "Ada", Role: entities.RoleAdmin},
		{Email: "brontee@example.com", Username: "brontee", FirstName: "Charlotte", Role: entities.RoleReader},
		{Email: "herman@example.com", Username: "herman", FirstName: "Herman", Role: entities.RoleReader},
	}
	for _, u := range seed {
		u.PasswordHash = hash
		u.IsActive = true
		if err := repo.Create(u); err != nil {
			log.Fatalf("Failed to create user %s: %v", u.Username, err)
		}
		log.Printf("Created user: %s (%s)", u.Username, u.Role)
	}
	return seed
}

func createBooks(db *database.Database) []*entities.Book {
	repo := books.NewRepository(db.DB)
	isbn := func(s string) *string { return &s }
	pages := func(n int) *int { return &n }

	seed := []*entities.Book{
		{
			ID:            "zyTCAlFPjgYC",
			Title:         "The Google Story",
			Author:        "David A. Vise",
			ISBN:          isbn("9780553804577"),
			PageCount:     pages(207),
			PublishedDate: "2005-11-15",
		},
		{
			ID:            "moby-dick-demo",
			Title:         "Moby Dick",
			Author:        "Herman Melville",
			ISBN:          isbn("9781503280786"),
			PageCount:     pages(378),
			PublishedDate: "1851-10-18",
		},
		{
			ID:            "jane-eyre-demo",
			Title:         "Jane Eyre",
			Author:        "Charlotte Bronte",
			ISBN:          isbn("9780142437209"),
			PageCount:     pages(532),
			PublishedDate: "1847-10-16",
		},
	}
	for _, b := range seed {
		if err := repo.Create(b); err != nil {
			log.Fatalf("Failed to create book %s: %v", b.Title, err)
		}
		log.Printf("Created book: %s by %s", b.Title, b.Author)
	}
	return seed
}

func createClub(db *database.Database, demoUsers []*entities.User, demoBooks []*entities.Book) *entities.Club {
	clubRepo := clubs.NewRepository(db.DB)
	club := &entities.Club{
		Name:        "Classics Reading Circle",
		Description: "A demo club reading public domain classics.",
		OwnerID:     demoUsers[0].ID,
		MaxMembers:  25,
	}
	if err := clubRepo.Create(club); err != nil {
		log.Fatalf("Failed to create club: %v", err)
	}
	for _, u := range demoUsers[1:] {
		if _, err := clubRepo.Join(club.ID, u.ID); err != nil {
			log.Fatalf("Failed to add %s to club: %v", u.Username, err)
		}
	}
	log.Printf("Created club: %s (%d members)", club.Name, len(demoUsers))

	clubBookRepo := clubbooks.NewRepository(db.DB)
	if _, err := clubBookRepo.Add(club.ID, demoBooks[1].ID, entities.ClubBookCurrent); err != nil {
		log.Fatalf("Failed to set current club book: %v", err)
	}
	if _, err := clubBookRepo.Add(club.ID, demoBooks[2].ID, entities.ClubBookPlanned); err != nil {
		log.Fatalf("Failed to add planned club book: %v", err)
	}
	return club
}

func createProgress(db *database.Database, demoUsers []*entities.User, demoBooks []*entities.Book, club *entities.Club) {
	repo := progress.NewRepository(db.DB)
	rating := func(n int) *int { return &n }
	started := time.Now().AddDate(0, 0, -14)

	entries := []progress.CreateInput{
		{
			UserID:             demoUsers[1].ID,
			BookID:             demoBooks[1].ID,
			ClubID:             &club.ID,
			Status:             entities.ProgressReading,
			CurrentPage:        120,
			ProgressPercentage: 31.7,
			StartedAt:          &started,
		},
		{
			UserID:             demoUsers[2].ID,
			BookID:             demoBooks[1].ID,
			ClubID:             &club.ID,
			Status:             entities.ProgressCompleted,
			CurrentPage:        378,
			ProgressPercentage: 100,
			Rating:             rating(5),
			StartedAt:          &started,
		},
		{
			UserID:      demoUsers[0].ID,
			BookID:      demoBooks[0].ID,
			Status:      entities.ProgressNotStarted,
			CurrentPage: 0,
		},
	}
	for _, input := range entries {
		if _, err := repo.Create(input, nil); err != nil {
			log.Fatalf("Failed to create reading progress: %v", err)
		}
	}
	log.Printf("Created %d progress entries", len(entries))
}

func createDiscussions(db *database.Database, demoUsers []*entities.User, demoBooks []*entities.Book, club *entities.Club) {
	repo := discussions.NewRepository(db.DB)
	topic := &entities.Discussion{
		ClubID:  club.ID,
		UserID:  demoUsers[2].ID,
		BookID:  demoBooks[1].ID,
		Title:   "Chapter 1 impressions",
		Content: "Call me impressed. What did everyone think of the opening?",
	}
	if err := repo.Create(topic); err != nil {
		log.Fatalf("Failed to create discussion: %v", err)
	}
	reply := &entities.Discussion{
		ClubID:   club.ID,
		UserID:   demoUsers[1].ID,
		BookID:   demoBooks[1].ID,
		ParentID: &topic.ID,
		Content:  "The narrator hooked me immediately.",
	}
	if err := repo.Create(reply); err != nil {
		log.Fatalf("Failed to create reply: %v", err)
	}
	log.Println("Created demo discussion thread")
}
