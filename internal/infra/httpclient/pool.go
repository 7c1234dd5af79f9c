package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport backs every pooled client so the ollama chat, ollama embed,
// and feed fetch clients draw from one connection pool. The ollama server is
// a single host serving both chat and embedding calls, so keep-alive
// connections to it are reused across ingestion and query traffic; feed hosts
// are polled on an interval and rarely need more than one warm connection.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client with the given timeout on top of the
// shared transport. The timeout bounds the whole exchange, so streaming chat
// clients must pass one longer than the generation budget.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
