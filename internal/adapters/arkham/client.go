// Package arkham implementa ports.BalanceProvider contra la API firmada de
// balances por wallet.
package arkham

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

const (
	defaultBaseURL = "https://api.arkhamintelligence.com"
	balancesPath   = "/balances/address/"
)

// ErrMissingSecret se devuelve si el cliente no tiene secret configurado.
var ErrMissingSecret = errors.New("balance API secret not configured")

// Executor ejecuta un GET con rate limiting y retries (governor.Governor).
type Executor interface {
	ExecuteWithRetry(ctx context.Context, rawURL string, headers http.Header, params url.Values) ([]byte, error)
}

// Client es el cliente de la API de balances.
type Client struct {
	exec    Executor
	baseURL string
	secret  string
	now     func() time.Time
}

// NewClient crea un Client. baseURL vacío usa el host de producción.
func NewClient(baseURL, secret string, exec Executor) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		exec:    exec,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}
}

// FetchBalance obtiene el payload de balances de una wallet. El payload se
// devuelve tal cual, sin interpretar.
func (c *Client) FetchBalance(ctx context.Context, address string) (domain.Balance, error) {
	if c.secret == "" {
		return domain.Balance{}, ErrMissingSecret
	}

	path := balancesPath + url.PathEscape(address)
	ts := Timestamp(c.now())

	headers := http.Header{}
	headers.Set("X-Payload", Payload(path, ts, c.secret))
	headers.Set("X-Timestamp", ts)

	body, err := c.exec.ExecuteWithRetry(ctx, c.baseURL+path, headers, nil)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("arkham.FetchBalance %s: %w", address, err)
	}
	if !json.Valid(body) {
		return domain.Balance{}, fmt.Errorf("arkham.FetchBalance %s: invalid JSON payload", address)
	}
	return domain.Balance{Address: address, Payload: json.RawMessage(body)}, nil
}
