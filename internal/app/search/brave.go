package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const braveURL = "https://api.search.brave.com/res/v1/web/search"

// BraveProvider queries the Brave Search web API.
type BraveProvider struct {
	APIKey  string
	Client  *http.Client
	BaseURL string
}

func (p *BraveProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = braveURL
	}

	params := url.Values{"q": {query}, "count": {strconv.Itoa(limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("brave: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(Brave, resp); err != nil {
		return nil, err
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("brave: decode: %w", err)
	}

	out := make([]Result, 0, limit)
	for _, r := range raw.Web.Results {
		if len(out) >= limit {
			break
		}
		out = append(out, Result{Title: r.Title, Body: r.Description, URL: r.URL})
	}
	return out, nil
}
