package metadata

import (
	"context"
	"fmt"

	"github.com/literattus/literattus/internal/entities"
)

// CatalogProvider fetches volume data from the external catalog.
type CatalogProvider interface {
	GetByID(ctx context.Context, volumeID string) (*Volume, error)
	Search(ctx context.Context, query string, maxResults, startIndex int) ([]Volume, error)
}

// BookStore is the slice of the book repository the refresher needs.
type BookStore interface {
	GetByID(id string) (*entities.Book, error)
	RefreshAttributes(id string, fresh *entities.Book) (*entities.Book, error)
	AllIDs() ([]string, error)
}

// RefreshResult describes a single book refresh.
type RefreshResult struct {
	Book          *entities.Book `json:"book"`
	FieldsChanged []string       `json:"fields_changed"`
}

// RefreshSummary describes a bulk refresh run.
type RefreshSummary struct {
	Total     int      `json:"total"`
	Refreshed int      `json:"refreshed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Refresher re-fetches stored books from the catalog and writes back
// changed attributes. Identities never change; only attributes do.
type Refresher struct {
	provider CatalogProvider
	books    BookStore
}

func NewRefresher(provider CatalogProvider, books BookStore) *Refresher {
	return &Refresher{provider: provider, books: books}
}

// RefreshBook fetches the catalog entry for a stored book and applies
// any attribute changes.
func (r *Refresher) RefreshBook(ctx context.Context, bookID string) (*RefreshResult, error) {
	stored, err := r.books.GetByID(bookID)
	if err != nil {
		return nil, err
	}

	volume, err := r.provider.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog entry: %w", err)
	}

	fresh := VolumeToBook(volume)
	changed := diffAttributes(stored, fresh)
	if len(changed) == 0 {
		return &RefreshResult{Book: stored}, nil
	}

	updated, err := r.books.RefreshAttributes(bookID, fresh)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Book: updated, FieldsChanged: changed}, nil
}

// RefreshAll refreshes every stored book, continuing past individual
// failures and reporting them in the summary.
func (r *Refresher) RefreshAll(ctx context.Context) (*RefreshSummary, error) {
	ids, err := r.books.AllIDs()
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := r.RefreshBook(ctx, id); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		summary.Refreshed++
	}
	return summary, nil
}

// VolumeToBook maps a catalog volume onto the stored book shape.
func VolumeToBook(v *Volume) *entities.Book {
	book := &entities.Book{
		ID:            v.ID,
		Title:         v.Title,
		Author:        v.Author,
		Description:   v.Description,
		CoverImageURL: v.CoverImageURL,
		PublishedDate: v.PublishedDate,
	}
	if isbn := normalizeISBN(v.ISBN); isbn != "" {
		book.ISBN = &isbn
	}
	if v.PageCount > 0 {
		pages := v.PageCount
		book.PageCount = &pages
	}
	return book
}

func diffAttributes(stored, fresh *entities.Book) []string {
	var changed []string
	if stored.Title != fresh.Title {
		changed = append(changed, "title")
	}
	if stored.Author != fresh.Author {
		changed = append(changed, "author")
	}
	if stored.Description != fresh.Description {
		changed = append(changed, "description")
	}
	if stored.CoverImageURL != fresh.CoverImageURL {
		changed = append(changed, "cover_image_url")
	}
	if stored.PublishedDate != fresh.PublishedDate {
		changed = append(changed, "published_date")
	}
	if !strPtrEqual(stored.ISBN, fresh.ISBN) {
		changed = append(changed, "isbn")
	}
	if !intPtrEqual(stored.PageCount, fresh.PageCount) {
		changed = append(changed, "page_count")
	}
	return changed
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
