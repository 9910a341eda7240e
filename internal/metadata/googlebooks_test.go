package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"978-0-13-468599-1", "9780134685991"},
		{"0-13-468599-6", "0134685996"},
		{"978 0 13 468599 1", "9780134685991"},
		{"9780134685991", "9780134685991"},
		{"123", ""},            // Too short
		{"12345678901234", ""}, // Too long
		{"", ""},
		{"  978-0-13-468599-1  ", "9780134685991"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := normalizeISBN(tt.input)
			if result != tt.expected {
				t.Errorf("normalizeISBN(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes/zyTCAlFPjgYC" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		response := volumeItem{
			ID: "zyTCAlFPjgYC",
			VolumeInfo: volumeInfo{
				Title:         "The Google Story",
				Authors:       []string{"David A. Vise", "Mark Malseed"},
				PublishedDate: "2005-11-15",
				PageCount:     207,
				IndustryIdentifiers: []industryIdentifier{
					{Type: "ISBN_10", Identifier: "055380457X"},
					{Type: "ISBN_13", Identifier: "9780553804577"},
				},
				ImageLinks: &imageLinks{
					Thumbnail: "http://books.google.com/thumbnail.jpg",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewGoogleBooksClient("")
	client.baseURL = server.URL
	client.rateLimiter = newRateLimiter(0)

	volume, err := client.GetByID(context.Background(), "zyTCAlFPjgYC")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if volume.Title != "The Google Story" {
		t.Errorf("Title = %q, expected %q", volume.Title, "The Google Story")
	}
	if volume.Author != "David A. Vise, Mark Malseed" {
		t.Errorf("Author = %q, expected joined author list", volume.Author)
	}
	if volume.ISBN != "9780553804577" {
		t.Errorf("ISBN = %q, expected the ISBN-13", volume.ISBN)
	}
	if volume.PageCount != 207 {
		t.Errorf("PageCount = %d, expected 207", volume.PageCount)
	}
	if volume.CoverImageURL != "http://books.google.com/thumbnail.jpg" {
		t.Errorf("CoverImageURL = %q", volume.CoverImageURL)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewGoogleBooksClient("")
	client.baseURL = server.URL
	client.rateLimiter = newRateLimiter(0)

	_, err := client.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing volume")
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("q"); got != "dune herbert" {
			t.Errorf("q = %q, expected %q", got, "dune herbert")
		}
		if got := r.URL.Query().Get("maxResults"); got != "5" {
			t.Errorf("maxResults = %q, expected 5", got)
		}
		response := volumesResult{
			TotalItems: 2,
			Items: []volumeItem{
				{ID: "BK1", VolumeInfo: volumeInfo{Title: "Dune", Authors: []string{"Frank Herbert"}}},
				{ID: "BK2", VolumeInfo: volumeInfo{Title: "Dune Messiah", Authors: []string{"Frank Herbert"}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewGoogleBooksClient("")
	client.baseURL = server.URL
	client.rateLimiter = newRateLimiter(0)

	volumes, err := client.Search(context.Background(), "dune herbert", 5, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(volumes) != 2 {
		t.Fatalf("got %d volumes, expected 2", len(volumes))
	}
	if volumes[0].ID != "BK1" || volumes[1].ID != "BK2" {
		t.Errorf("unexpected volume IDs: %q, %q", volumes[0].ID, volumes[1].ID)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewGoogleBooksClient("")
	client.rateLimiter = newRateLimiter(0)

	_, err := client.Search(context.Background(), "   ", 5, 0)
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearch_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "secret-key" {
			t.Errorf("key = %q, expected %q", got, "secret-key")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(volumesResult{})
	}))
	defer server.Close()

	client := NewGoogleBooksClient("secret-key")
	client.baseURL = server.URL
	client.rateLimiter = newRateLimiter(0)

	if _, err := client.Search(context.Background(), "anything", 5, 0); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}

func TestPickISBN_PrefersISBN13(t *testing.T) {
	identifiers := []industryIdentifier{
		{Type: "ISBN_10", Identifier: "0553804577"},
		{Type: "ISBN_13", Identifier: "9780553804577"},
	}
	if got := pickISBN(identifiers); got != "9780553804577" {
		t.Errorf("pickISBN = %q, expected the ISBN-13", got)
	}

	only10 := []industryIdentifier{{Type: "ISBN_10", Identifier: "0553804577"}}
	if got := pickISBN(only10); got != "0553804577" {
		t.Errorf("pickISBN = %q, expected the ISBN-10 fallback", got)
	}

	if got := pickISBN(nil); got != "" {
		t.Errorf("pickISBN = %q, expected empty", got)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(50 * time.Millisecond)

	start := time.Now()
	limiter.wait()
	limiter.wait()
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("second call returned after %v, expected at least 50ms", elapsed)
	}
}
