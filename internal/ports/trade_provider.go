package ports

import (
	"context"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// TradeProvider obtiene los trades recientes de un pool.
type TradeProvider interface {
	// FetchTrades hace el crawl paginado de un pool dentro de la ventana de q.
	// Un error significa que la tarea entera falló; los fallos a mitad de
	// paginación se devuelven como resultado parcial sin error.
	FetchTrades(ctx context.Context, q domain.TradeQuery) ([]domain.Trade, error)
}

// ChainResolver traduce el nombre visible de una red al identifier de la API.
type ChainResolver interface {
	ChainIdentifier(networkName string) (string, bool)
}
