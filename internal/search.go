package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const youtubeSearchURL = "https://www.youtube.com/results"

var playlistIDRegex = regexp.MustCompile(`/playlist\?list=([A-Za-z0-9_-]+)`)

// Searcher turns a search query into a download target
type Searcher struct {
	client    *http.Client
	searchURL string
}

// NewSearcher creates a searcher whose HTTP calls are bounded by timeout
func NewSearcher(timeout time.Duration) *Searcher {
	return &Searcher{
		client:    &http.Client{Timeout: timeout},
		searchURL: youtubeSearchURL,
	}
}

// Resolve returns a playlist URL when the query asks for a playlist and a
// "first search result" directive otherwise
func (s *Searcher) Resolve(ctx context.Context, query string) (string, error) {
	if !strings.Contains(strings.ToLower(query), "playlist") {
		return "ytsearch:" + query, nil
	}
	return s.FindPlaylist(ctx, query)
}

// FindPlaylist scans the search results page for the first playlist ID
func (s *Searcher) FindPlaylist(ctx context.Context, query string) (string, error) {
	target := s.searchURL + "?" + url.Values{"search_query": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating search request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("searching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("searching: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading search results: %w", err)
	}

	m := playlistIDRegex.FindSubmatch(body)
	if m == nil {
		return "", ErrNoPlaylistFound
	}
	return "https://www.youtube.com/playlist?list=" + string(m[1]), nil
}
