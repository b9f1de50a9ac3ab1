// Package governor controla todo el tráfico saliente: presupuesto de requests
// compartido por las goroutines que usan la misma instancia de Limiter, y
// reintentos con backoff exponencial + jitter.
package governor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultMaxAttempts  = 8
	DefaultInitialDelay = 2 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// Governor ejecuta GETs pasando cada intento por el Limiter.
type Governor struct {
	http         *http.Client
	limiter      Limiter
	maxAttempts  int
	initialDelay time.Duration

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// Option configura un Governor.
type Option func(*Governor)

// WithMaxAttempts fija el número total de intentos por request lógico.
func WithMaxAttempts(n int) Option {
	return func(g *Governor) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithInitialDelay fija el delay base del backoff.
func WithInitialDelay(d time.Duration) Option {
	return func(g *Governor) {
		if d > 0 {
			g.initialDelay = d
		}
	}
}

// WithSleeper reemplaza la espera del backoff (tests).
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Governor) { g.sleep = fn }
}

// WithJitter reemplaza la fuente de jitter (tests).
func WithJitter(fn func() time.Duration) Option {
	return func(g *Governor) { g.jitter = fn }
}

// New crea un Governor. Si client es nil usa un http.Client con timeout.
// Dos Governors con el mismo limiter comparten presupuesto.
func New(client *http.Client, limiter Limiter, opts ...Option) *Governor {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if limiter == nil {
		limiter = NewWindowLimiter(DefaultBurst, DefaultWindow)
	}
	g := &Governor{
		http:         client,
		limiter:      limiter,
		maxAttempts:  DefaultMaxAttempts,
		initialDelay: DefaultInitialDelay,
		sleep:        sleepCtx,
		jitter:       randomJitter,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExecuteWithRetry hace un GET a rawURL con los headers y params dados.
//
//   - 200: devuelve el body.
//   - 429: espera initialDelay × 2^attempt + jitter y reintenta.
//   - otro status: *StatusError inmediato, sin reintento.
//   - error de transporte: reintenta con el mismo backoff.
//
// Agotar los intentos devuelve un error que envuelve ErrRetriesExhausted.
func (g *Governor) ExecuteWithRetry(ctx context.Context, rawURL string, headers http.Header, params url.Values) ([]byte, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("governor: build url: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("governor: rate limiter: %w", err)
		}

		body, status, err := g.do(ctx, target, headers)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			slog.Warn("request failed", "url", target, "attempt", attempt+1, "err", err)
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusTooManyRequests:
			lastErr = &StatusError{StatusCode: status, URL: target, Body: body}
		default:
			return nil, &StatusError{StatusCode: status, URL: target, Body: body}
		}

		if attempt == g.maxAttempts-1 {
			break
		}
		delay := g.Backoff(attempt)
		slog.Warn("retrying request", "url", target, "attempt", attempt+1, "delay", delay.Round(time.Millisecond))
		if err := g.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("governor: %w after %d attempts: %w", ErrRetriesExhausted, g.maxAttempts, lastErr)
}

// Backoff devuelve la espera tras el intento attempt (base 0).
func (g *Governor) Backoff(attempt int) time.Duration {
	return g.initialDelay<<attempt + g.jitter()
}

func (g *Governor) do(ctx context.Context, target string, headers http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// withParams añade params al query de rawURL, conservando los que ya tenga.
func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// randomJitter devuelve un valor uniforme en [0, 1s).
func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(time.Second)))
}
