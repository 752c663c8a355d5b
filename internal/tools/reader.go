package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/wakeel/internal/network"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxPageChars     = 20000
)

// Renderer returns the fully rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Reader fetches a web page and extracts its main content as sanitized text.
// When the static HTML has no readable text and a Renderer is set, the page is
// rendered in a browser and extracted again.
type Reader struct {
	UserAgent string
	Client    *network.Client
	Policy    network.Policy
	Renderer  Renderer
}

func NewReader(client *network.Client, policy network.Policy) *Reader {
	return &Reader{
		UserAgent: defaultUserAgent,
		Client:    client,
		Policy:    policy,
	}
}

func (r *Reader) Read(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil || parsedURL.Host == "" {
		return "", fmt.Errorf("failed to parse URL: %s", pageURL)
	}

	body, err := network.Retry(ctx, r.Policy, func(ctx context.Context) ([]byte, error) {
		return r.Client.Call(ctx, network.Request{
			Method:  http.MethodGet,
			URL:     pageURL,
			Headers: map[string]string{"User-Agent": r.UserAgent},
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil && r.Renderer == nil {
		return "", fmt.Errorf("failed to parse article: %v", err)
	}

	if (err != nil || strings.TrimSpace(article.TextContent) == "") && r.Renderer != nil {
		html, err := r.Renderer.Render(ctx, pageURL)
		if err != nil {
			return "", fmt.Errorf("failed to render page: %w", err)
		}
		article, err = readability.FromReader(strings.NewReader(html), parsedURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse rendered article: %v", err)
		}
	}

	p := bluemonday.StrictPolicy()
	content := strings.TrimSpace(p.Sanitize(article.TextContent))
	if content == "" {
		return "", fmt.Errorf("no readable content at %s", pageURL)
	}

	output := fmt.Sprintf("TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		output += fmt.Sprintf("EXCERPT: %s\n", article.Excerpt)
	}
	output += "\n-- CONTENT --\n"

	if runes := []rune(content); len(runes) > maxPageChars {
		content = string(runes[:maxPageChars]) + "\n... (content truncated) ..."
	}
	return output + content, nil
}

// ChromeRenderer renders pages with a headless Chrome via chromedp.
type ChromeRenderer struct {
	Timeout time.Duration
}

func (c ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// ReaderTool exposes Reader through the tool registry.
type ReaderTool struct {
	Reader *Reader
}

func NewReaderTool(reader *Reader) *ReaderTool {
	return &ReaderTool{Reader: reader}
}

func (t *ReaderTool) Name() string {
	return "read_page"
}

func (t *ReaderTool) Description() string {
	return "Fetch a webpage URL and extract the main content as clean, sanitized text."
}

func (t *ReaderTool) Parameters() map[string]any {
	return stringParam("url", "The full URL of the webpage to read (e.g., https://example.com/article)")
}

func (t *ReaderTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	return t.Reader.Read(ctx, args.URL)
}
