package domain

import (
	"context"
	"time"
)

// FeedSource identifies one RSS feed to ingest.
type FeedSource struct {
	Identifier string
	URL        string
}

// FeedClient fetches and parses one RSS feed into cleaned items.
type FeedClient interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// FeedItem is one entry parsed from an RSS feed, with HTML stripped from the
// textual fields. ContentHash is the deduplication key computed by
// SourceHashPolicy from the raw entry.
type FeedItem struct {
	Title         string
	Link          string
	Description   string
	Content       string
	Author        string
	Category      string
	Published     string
	GUID          string
	EnclosureURL  string
	EnclosureType string
	ContentHash   string
	FetchedAt     time.Time
}
