// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/grifftatarsky/bonk/models"
)

const DefaultOpenLibraryURL = "https://openlibrary.org"

// OpenLibrary searches the Open Library catalogue. Results are cached per
// query, page and limit.
type OpenLibrary struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, models.OpenLibrarySearchResponse]
}

// NewOpenLibrary returns a searcher for baseURL (DefaultOpenLibraryURL when
// empty) that remembers up to cacheSize queries.
func NewOpenLibrary(baseURL string, cacheSize int) *OpenLibrary {
	if baseURL == "" {
		baseURL = DefaultOpenLibraryURL
	}
	cache, err := lru.New[string, models.OpenLibrarySearchResponse](max(cacheSize, 1))
	if err != nil {
		panic(err)
	}
	return &OpenLibrary{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// Search runs a catalogue search. page is zero-based. A blank query returns
// an empty result without calling out.
func (o *OpenLibrary) Search(ctx context.Context, query string, page, limit int) (models.OpenLibrarySearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.OpenLibrarySearchResponse{Docs: []models.OpenLibraryDoc{}}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("%s|%d|%d", strings.ToLower(query), page, limit)
	if res, ok := o.cache.Get(key); ok {
		return res, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page+1))
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return models.OpenLibrarySearchResponse{}, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return models.OpenLibrarySearchResponse{}, fmt.Errorf("open library search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.OpenLibrarySearchResponse{}, &StatusError{Method: http.MethodGet, Path: "/search.json", Code: resp.StatusCode}
	}

	var res models.OpenLibrarySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return models.OpenLibrarySearchResponse{}, fmt.Errorf("decode open library search: %w", err)
	}
	o.cache.Add(key, res)
	return res, nil
}
