package geckoterminal

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alejandrodnm/tradescan/internal/ports"
)

const (
	defaultBaseURL   = "https://app.geckoterminal.com/api/p1"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Executor ejecuta un GET con rate limiting y retries (governor.Governor).
type Executor interface {
	ExecuteWithRetry(ctx context.Context, rawURL string, headers http.Header, params url.Values) ([]byte, error)
}

// Client es el cliente de la API de market data. Implementa ports.TradeProvider.
type Client struct {
	exec    Executor
	chains  ports.ChainResolver
	baseURL *url.URL
	headers http.Header
}

// NewClient crea un Client. baseURL vacío usa el endpoint de producción.
func NewClient(baseURL, userAgent string, exec Executor, chains ports.ChainResolver) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	return &Client{exec: exec, chains: chains, baseURL: u, headers: h}, nil
}

// swapsURL devuelve {base}/{chain}/pools/{address}/swaps.
func (c *Client) swapsURL(chain, poolAddress string) string {
	return c.baseURL.JoinPath(chain, "pools", poolAddress, "swaps").String()
}

// resolveNext convierte links.next (absoluto o relativo al host) en una URL absoluta.
func (c *Client) resolveNext(next string) (string, error) {
	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}
