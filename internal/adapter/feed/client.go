package feed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"ssu-rag/internal/domain"
	"ssu-rag/internal/infra/ratelimit"
)

// Client fetches RSS feeds with gofeed, strips HTML from the textual fields
// and computes the deduplication hash for each entry.
type Client struct {
	parser      *gofeed.Parser
	hashPolicy  domain.SourceHashPolicy
	rateLimiter *ratelimit.HostRateLimiter
	clock       func() time.Time
}

// NewClient creates a feed client. rateLimiter may be nil to disable per-host
// spacing (tests, CLI one-shots).
func NewClient(httpClient *http.Client, hashPolicy domain.SourceHashPolicy, rateLimiter *ratelimit.HostRateLimiter) *Client {
	parser := gofeed.NewParser()
	parser.Client = httpClient
	return &Client{
		parser:      parser,
		hashPolicy:  hashPolicy,
		rateLimiter: rateLimiter,
		clock:       time.Now,
	}
}

// Fetch downloads and parses the feed at url, returning cleaned items in feed
// order.
func (c *Client) Fetch(ctx context.Context, url string) ([]domain.FeedItem, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.WaitForHost(ctx, url); err != nil {
			return nil, fmt.Errorf("rate limiting failed: %w", err)
		}
	}

	parsed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, c.convertEntry(entry))
	}
	return items, nil
}

func (c *Client) convertEntry(entry *gofeed.Item) domain.FeedItem {
	item := domain.FeedItem{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: CleanHTMLText(entry.Description),
		Content:     CleanHTMLText(entry.Content),
		Published:   entry.Published,
		GUID:        entry.GUID,
		FetchedAt:   c.clock().UTC(),
	}
	if item.Published == "" {
		item.Published = entry.Updated
	}
	if item.GUID == "" {
		item.GUID = entry.Link
	}
	if entry.Author != nil {
		item.Author = entry.Author.Name
	}
	if len(entry.Categories) > 0 {
		item.Category = entry.Categories[0]
	}
	if len(entry.Enclosures) > 0 {
		item.EnclosureURL = entry.Enclosures[0].URL
		item.EnclosureType = entry.Enclosures[0].Type
	}

	// The hash covers the raw description so re-rendered HTML does not
	// change the deduplication key.
	item.ContentHash = c.hashPolicy.Compute(entry.Title, entry.Link, entry.Description)
	return item
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanHTMLText strips tags from an HTML fragment and collapses runs of
// whitespace into single spaces.
func CleanHTMLText(fragment string) string {
	if fragment == "" {
		return ""
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}
		if tokenType == html.TextToken {
			sb.WriteString(tokenizer.Token().Data)
			sb.WriteByte(' ')
		}
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " "))
}
