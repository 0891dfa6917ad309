package wikipedia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupPortrait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("list") {
		case "search":
			json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{
					"search": []any{map[string]any{"title": "Mary Lou McDonald"}},
				},
			})
		default:
			if got := r.URL.Query().Get("titles"); got != "Mary Lou McDonald" {
				t.Errorf("unexpected titles param %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{
					"pages": map[string]any{
						"123": map[string]any{
							"title":     "Mary Lou McDonald",
							"thumbnail": map[string]any{"source": "https://upload.wikimedia.org/thumb.jpg"},
						},
					},
				},
			})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 400)
	img, err := client.LookupPortrait(context.Background(), "Mary Lou McDonald")
	if err != nil {
		t.Fatalf("LookupPortrait: %v", err)
	}
	if img.ThumbnailURL != "https://upload.wikimedia.org/thumb.jpg" {
		t.Errorf("unexpected thumbnail url %q", img.ThumbnailURL)
	}
	if img.Title != "Mary Lou McDonald" {
		t.Errorf("unexpected title %q", img.Title)
	}
}

func TestLookupPortraitNoPageIsSoftMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{"search": []any{}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 400)
	img, err := client.LookupPortrait(context.Background(), "Nobody At All")
	if err != nil {
		t.Fatalf("expected soft miss, got error: %v", err)
	}
	if img.ThumbnailURL != "" || img.Title != "" {
		t.Errorf("expected zero PageImage, got %+v", img)
	}
}

func TestFetchThumbnailPageWithoutImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"42": map[string]any{"title": "Some Page"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 400)
	img, err := client.FetchThumbnail(context.Background(), "Some Page")
	if err != nil {
		t.Fatalf("FetchThumbnail: %v", err)
	}
	if img.ThumbnailURL != "" {
		t.Errorf("expected no thumbnail, got %q", img.ThumbnailURL)
	}
}
