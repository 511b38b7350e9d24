package subtitles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchParsesProviderResponse(t *testing.T) {
	var gotPath, gotLang, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLang = r.URL.Query().Get("languages")
		gotKey = r.Header.Get("Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"101","attributes":{"language":"en","release":"Movie.2024.1080p","title":"Movie"}},
			{"id":"102","attributes":{"language":"en","title":"Movie"}}
		]}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, "secret", 10)
	subs, err := p.Search(context.Background(), "Movie", "English")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotPath != "/subtitles" {
		t.Errorf("path = %q, want /subtitles", gotPath)
	}
	if gotLang != "en" {
		t.Errorf("languages = %q, want en (normalized)", gotLang)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d subtitles, want 2", len(subs))
	}
	if subs[0].ID != "101" || subs[0].Display != "Movie.2024.1080p" {
		t.Errorf("unexpected first subtitle: %+v", subs[0])
	}
	if subs[1].Display != "Movie" {
		t.Errorf("expected title fallback for display, got %q", subs[1].Display)
	}
}

func TestSearchDisabledProvider(t *testing.T) {
	p := NewProvider("", "", 0)
	subs, err := p.Search(context.Background(), "Movie", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs != nil {
		t.Fatalf("expected nil result for disabled provider, got %+v", subs)
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "", 5)
	if _, err := p.Search(context.Background(), "Movie", "en"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
