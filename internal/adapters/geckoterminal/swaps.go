package geckoterminal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// cursorLayout: ISO-8601 con microsegundos; el offset UTC se añade aparte.
const cursorLayout = "2006-01-02T15:04:05.000000"

// FetchTrades hace el crawl paginado de los swaps de un pool dentro de la
// ventana [WindowEnd-Lookback, WindowEnd].
//
// Nunca devuelve error: un chain desconocido da una lista vacía y cualquier
// fallo a mitad del crawl corta la paginación y devuelve lo acumulado. El
// corte exacto a MaxTrades lo hace el pipeline tras mezclar todos los pools.
func (c *Client) FetchTrades(ctx context.Context, q domain.TradeQuery) ([]domain.Trade, error) {
	chain, ok := c.chains.ChainIdentifier(q.Pool.Network)
	if !ok {
		slog.Error("chain identifier not found", "network", q.Pool.Network, "pool", q.Pool.Address)
		return nil, nil
	}

	next := c.swapsURL(chain, q.Pool.Address)
	params := firstPageParams(q)

	var trades []domain.Trade
crawl:
	for page := 0; len(trades) < q.MaxTrades; page++ {
		resp, err := c.fetchPage(ctx, next, params)
		if err != nil {
			slog.Error("error fetching trades",
				"pool", q.Pool.Address,
				"page", page,
				"accumulated", len(trades),
				"err", err,
			)
			break
		}
		if len(resp.Data) == 0 {
			break
		}

		for _, s := range resp.Data {
			t, err := toDomainTrade(s, q)
			if err != nil {
				// se conserva lo ya añadido de esta misma página
				slog.Error("error decoding swap",
					"pool", q.Pool.Address,
					"page", page,
					"swap", s.ID,
					"accumulated", len(trades),
					"err", err,
				)
				break crawl
			}
			trades = append(trades, t)
		}

		slog.Debug("fetched trades page",
			"pool", q.Pool.Address,
			"page", page,
			"count", len(resp.Data),
			"total", len(trades),
		)

		if resp.Links.Next == "" {
			break
		}
		// el link de la siguiente página ya trae su propio query
		if next, err = c.resolveNext(resp.Links.Next); err != nil {
			slog.Error("invalid next link", "pool", q.Pool.Address, "next", resp.Links.Next, "err", err)
			break
		}
		params = nil
	}

	return trades, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string, params url.Values) (swapsResponse, error) {
	body, err := c.exec.ExecuteWithRetry(ctx, pageURL, c.headers, params)
	if err != nil {
		return swapsResponse{}, err
	}
	var resp swapsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return swapsResponse{}, fmt.Errorf("decode swaps page: %w", err)
	}
	return resp, nil
}

// firstPageParams construye el query de la primera página. El cursor
// page[after] codifica la ventana como "start+00:00_end+00:00".
func firstPageParams(q domain.TradeQuery) url.Values {
	return url.Values{
		"include":     {"from_token,to_token"},
		"inverted":    {"0"},
		"page[after]": {DateRangeCursor(q.WindowStart(), q.WindowEnd)},
		"pair_id":     {q.Pool.ID},
	}
}

// DateRangeCursor formatea la ventana [start, end] para el cursor de paginación.
func DateRangeCursor(start, end time.Time) string {
	return formatCursorTime(start) + "_" + formatCursorTime(end)
}

func formatCursorTime(t time.Time) string {
	return t.UTC().Format(cursorLayout) + "+00:00"
}
