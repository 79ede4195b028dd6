/*
Package search fetches short-lived web context for a chat turn.

A Provider talks to one search backend; the Retriever wraps a Provider with a result
cap, a deadline, outbound pacing and the degrade-to-empty policy.
*/
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Result is one ranked search hit.
type Result struct {
	Title string
	Body  string
	URL   string
}

// Provider runs one query against a search backend and returns at most limit results
// in the backend's ranking order.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Kind names a supported backend.
type Kind string

const (
	DuckDuckGo Kind = "duckduckgo"
	Brave      Kind = "brave"
	Serper     Kind = "serper"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported search provider")
	ErrMissingAPIKey       = errors.New("search provider requires an API key")
)

// StatusError reports a non-2xx answer from a backend.
type StatusError struct {
	Provider Kind
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Code)
}

// NewProvider builds the backend named by kind. A nil client means http.DefaultClient.
func NewProvider(kind Kind, apiKey string, client *http.Client) (Provider, error) {
	if client == nil {
		client = http.DefaultClient
	}

	switch Kind(strings.ToLower(string(kind))) {
	case DuckDuckGo, "":
		return &DuckDuckGoProvider{Client: client}, nil
	case Brave:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return &BraveProvider{APIKey: apiKey, Client: client}, nil
	case Serper:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return &SerperProvider{APIKey: apiKey, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, kind)
	}
}

func checkStatus(kind Kind, resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: kind, Code: resp.StatusCode}
	}
	return nil
}
