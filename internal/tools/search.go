package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/wakeel/internal/network"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const (
	DefaultSerperURL = "https://google.serper.dev/search"

	// digestSize is how many ranked results make it into a search digest.
	digestSize      = 3
	resultSeparator = "\n\n─────────────\n\n"
)

type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Searcher is a web-search backend. Results come back in provider ranking order.
type Searcher interface {
	Discover(ctx context.Context, q string, k int) ([]Result, error)
}

// SerperSearcher queries the serper.dev Google search API.
type SerperSearcher struct {
	APIKey   string
	Endpoint string
	Country  string
	Language string
	Client   *network.Client
}

func (s *SerperSearcher) Discover(ctx context.Context, q string, k int) ([]Result, error) {
	if s.APIKey == "" {
		return nil, &ConfigurationError{Setting: "search API key"}
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultSerperURL
	}
	payload := map[string]any{"q": q, "num": k}
	if s.Country != "" {
		payload["gl"] = s.Country
	}
	if s.Language != "" {
		payload["hl"] = s.Language
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	err := s.Client.CallJSON(ctx, network.Request{
		URL:     endpoint,
		Headers: map[string]string{"X-API-KEY": s.APIKey},
		Body:    payload,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]Result, 0, len(raw.Organic))
	for _, item := range raw.Organic {
		out = append(out, Result{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
	}
	return out, nil
}

// DuckDuckGoSearcher is the keyless backend built on langchaingo's DuckDuckGo tool.
type DuckDuckGoSearcher struct {
	client *duckduckgo.Tool
}

func NewDuckDuckGoSearcher(maxResults int) (*DuckDuckGoSearcher, error) {
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &DuckDuckGoSearcher{client: ddg}, nil
}

func (s *DuckDuckGoSearcher) Discover(ctx context.Context, q string, k int) ([]Result, error) {
	res, err := s.client.Call(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	out := parseDuckDuckGo(res)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// parseDuckDuckGo reads the "Title:/Description:/URL:" blocks the langchaingo
// tool renders. Anything else (including its no-result sentence) yields nothing.
func parseDuckDuckGo(text string) []Result {
	var out []Result
	for _, block := range strings.Split(text, "\n\n") {
		var r Result
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Title:"):
				r.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
			case strings.HasPrefix(line, "Description:"):
				r.Snippet = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
			case strings.HasPrefix(line, "URL:"):
				r.Link = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
			}
		}
		if r.Title != "" || r.Link != "" {
			out = append(out, r)
		}
	}
	return out
}

// SearchService rate-limits searches through a shared limiter and renders the
// top results as a text digest.
type SearchService struct {
	Searcher   Searcher
	Limiter    *RateLimiter
	Policy     network.Policy
	NumResults int
}

func NewSearchService(searcher Searcher, limiter *RateLimiter, policy network.Policy) *SearchService {
	return &SearchService{
		Searcher:   searcher,
		Limiter:    limiter,
		Policy:     policy,
		NumResults: 5,
	}
}

func (s *SearchService) Search(ctx context.Context, query string) (string, error) {
	if s.Searcher == nil {
		return "", &ConfigurationError{Setting: "search provider"}
	}
	if serper, ok := s.Searcher.(*SerperSearcher); ok && serper.APIKey == "" {
		return "", &ConfigurationError{Setting: "search API key"}
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	results, err := network.Retry(ctx, s.Policy, func(ctx context.Context) ([]Result, error) {
		res, err := s.Searcher.Discover(ctx, query, s.NumResults)
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, network.Permanent(err)
		}
		return res, err
	})
	if err != nil {
		return "", err
	}
	return FormatResults(query, results), nil
}

// FormatResults renders the top results, or a no-results notice.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No suitable results found for %q", query)
	}
	if len(results) > digestSize {
		results = results[:digestSize]
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("🔍 %s\n🔗 %s\n📝 %s", r.Title, r.Link, r.Snippet))
	}
	return fmt.Sprintf("Search results for %q:\n\n%s", query, strings.Join(parts, resultSeparator))
}

// SearchTool exposes SearchService through the tool registry.
type SearchTool struct {
	Service *SearchService
}

func NewSearchTool(service *SearchService) *SearchTool {
	return &SearchTool{Service: service}
}

func (s *SearchTool) Name() string {
	return "web_search"
}

func (s *SearchTool) Description() string {
	return "Search the web for current information and return the top results."
}

func (s *SearchTool) Parameters() map[string]any {
	return stringParam("query", "The search query to look up")
}

func (s *SearchTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	return s.Service.Search(ctx, args.Query)
}
