// Package metadata integrates with the Google Books volumes API. The
// catalog is the source of truth for book attributes; stored records are
// keyed by the volume ID and refreshed from here.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxResultsLimit is the hard cap the volumes API puts on maxResults.
const maxResultsLimit = 40

// Volume is a catalog entry normalized from a Google Books API item.
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn,omitempty"`
	Description   string   `json:"description,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	AverageRating float64  `json:"average_rating,omitempty"`
}

// GoogleBooksClient fetches book data from the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a rate-limited Google Books API client.
// The API key is optional; without one requests count against the
// anonymous quota.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://www.googleapis.com/books/v1",
		apiKey:      apiKey,
		rateLimiter: newRateLimiter(time.Second),
	}
}

// Search queries the catalog and returns up to maxResults volumes.
func (c *GoogleBooksClient) Search(ctx context.Context, query string, maxResults, startIndex int) ([]Volume, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if maxResults <= 0 || maxResults > maxResultsLimit {
		maxResults = maxResultsLimit
	}

	c.rateLimiter.wait()

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("startIndex", strconv.Itoa(startIndex))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	volumes := make([]Volume, 0, len(result.Items))
	for i := range result.Items {
		volumes = append(volumes, convertItem(&result.Items[i]))
	}
	return volumes, nil
}

// GetByID fetches a single volume by its catalog identifier.
func (c *GoogleBooksClient) GetByID(ctx context.Context, volumeID string) (*Volume, error) {
	if volumeID == "" {
		return nil, fmt.Errorf("volume ID is required")
	}

	c.rateLimiter.wait()

	volumeURL := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(volumeID))
	if c.apiKey != "" {
		volumeURL += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volumeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("volume not found: %s", volumeID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var item volumeItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode volume response: %w", err)
	}

	volume := convertItem(&item)
	return &volume, nil
}

func convertItem(item *volumeItem) Volume {
	info := item.VolumeInfo

	volume := Volume{
		ID:            item.ID,
		Title:         info.Title,
		Description:   info.Description,
		PublishedDate: info.PublishedDate,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		AverageRating: info.AverageRating,
	}
	if volume.Title == "" {
		volume.Title = "Unknown Title"
	}

	if len(info.Authors) > 0 {
		volume.Author = strings.Join(info.Authors, ", ")
	} else {
		volume.Author = "Unknown Author"
	}

	volume.ISBN = pickISBN(info.IndustryIdentifiers)
	volume.CoverImageURL = pickCover(info.ImageLinks)

	return volume
}

// pickISBN prefers ISBN-13 over ISBN-10.
func pickISBN(identifiers []industryIdentifier) string {
	var isbn10 string
	for _, id := range identifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

// pickCover prefers the highest resolution image the API offers.
func pickCover(links *imageLinks) string {
	if links == nil {
		return ""
	}
	for _, candidate := range []string{
		links.ExtraLarge,
		links.Large,
		links.Medium,
		links.Thumbnail,
		links.SmallThumbnail,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// normalizeISBN removes hyphens and spaces from an ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// Google Books API response types (internal)

type volumesResult struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	PublishedDate       string               `json:"publishedDate"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       float64              `json:"averageRating"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          *imageLinks          `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}
