// Package subtitles queries an external subtitle provider for candidate
// subtitles to feed into selection.
package subtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/config"
	"github.com/selectarr/selectarr/internal/httpclient"
	"github.com/selectarr/selectarr/internal/language"
	"github.com/selectarr/selectarr/internal/tracks"
)

// DefaultMaxResults bounds how many candidates a single search returns.
const DefaultMaxResults = 25

// Provider searches a remote subtitle catalog over its REST API.
type Provider struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
}

// NewProvider creates a provider client. baseURL is the API root, e.g.
// "https://api.opensubtitles.com/api/v1". An empty apiKey disables auth
// headers; some providers allow anonymous searches.
func NewProvider(baseURL, apiKey string, maxResults int) *Provider {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
		client:     httpclient.NewTraceClient("subtitle-provider", config.GetTimeouts().HTTPClient),
	}
}

// Enabled reports whether a provider endpoint is configured.
func (p *Provider) Enabled() bool {
	return p.baseURL != ""
}

// searchResponse mirrors the provider's search payload.
type searchResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Language string `json:"language"`
			Release  string `json:"release"`
			Title    string `json:"title"`
		} `json:"attributes"`
	} `json:"data"`
}

// Search returns external subtitle candidates for a media title, best matches
// for the preferred language first. Provider errors are returned as-is so the
// caller can decide whether to degrade to embedded tracks only.
func (p *Provider) Search(ctx context.Context, title, preferredLanguage string) ([]tracks.ExternalSubtitle, error) {
	if !p.Enabled() {
		return nil, nil
	}

	query := url.Values{}
	query.Set("query", title)
	if code := language.Normalize(preferredLanguage); code != "" {
		query.Set("languages", code)
	}
	query.Set("per_page", strconv.Itoa(p.maxResults))

	endpoint := p.baseURL + "/subtitles?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subtitle provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subtitle provider returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	subs := make([]tracks.ExternalSubtitle, 0, len(payload.Data))
	for _, item := range payload.Data {
		display := item.Attributes.Release
		if display == "" {
			display = item.Attributes.Title
		}
		subs = append(subs, tracks.ExternalSubtitle{
			ID:       item.ID,
			Language: item.Attributes.Language,
			Display:  display,
		})
	}

	log.Debug().
		Str("title", title).
		Str("language", preferredLanguage).
		Int("results", len(subs)).
		Msg("Subtitle provider search complete")

	return subs, nil
}
