package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider scrapes the keyless HTML endpoint of DuckDuckGo.
type DuckDuckGoProvider struct {
	Client *http.Client

	// BaseURL overrides the endpoint; empty means the public one.
	BaseURL string
}

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = duckDuckGoURL
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; groundchat/1.0)")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(DuckDuckGo, resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse html: %w", err)
	}

	out := make([]Result, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		out = append(out, Result{
			Title: title,
			Body:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			URL:   resolveRedirect(href),
		})
		return true
	})

	return out, nil
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
