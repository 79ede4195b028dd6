package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const serperURL = "https://google.serper.dev/search"

// SerperProvider queries Google results through serper.dev.
type SerperProvider struct {
	APIKey  string
	Client  *http.Client
	BaseURL string
}

func (p *SerperProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = serperURL
	}

	body, err := json.Marshal(map[string]any{"q": query, "num": limit})
	if err != nil {
		return nil, fmt.Errorf("serper: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper: build request: %w", err)
	}
	req.Header.Set("X-API-KEY", p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(Serper, resp); err != nil {
		return nil, err
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("serper: decode: %w", err)
	}

	out := make([]Result, 0, limit)
	for _, r := range raw.Organic {
		if len(out) >= limit {
			break
		}
		out = append(out, Result{Title: r.Title, Body: r.Snippet, URL: r.Link})
	}
	return out, nil
}
