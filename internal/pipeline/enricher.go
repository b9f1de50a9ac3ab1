package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/alejandrodnm/tradescan/internal/ports"
)

// Enricher obtiene el balance de cada trader único de una lista de trades.
type Enricher struct {
	balances ports.BalanceProvider
	workers  int
}

// NewEnricher crea un Enricher con el pool de workers dado (<= 0 usa el default).
func NewEnricher(balances ports.BalanceProvider, workers int) *Enricher {
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}
	return &Enricher{balances: balances, workers: workers}
}

// FetchBalances devuelve address → payload solo para las direcciones cuyo
// balance se obtuvo. Un fallo por dirección se loguea y se omite.
func (e *Enricher) FetchBalances(ctx context.Context, trades []domain.Trade) map[string]json.RawMessage {
	addresses := UniqueAddresses(trades)
	slog.Info("fetching balances", "unique_addresses", len(addresses))

	out := make(map[string]json.RawMessage, len(addresses))
	for _, r := range fetchBalancesConcurrent(ctx, e.balances, addresses, e.workers) {
		if r.err != nil {
			slog.Error("failed to fetch balance", "address", r.address, "err", r.err)
			continue
		}
		if r.balance.Empty() {
			slog.Debug("empty balance payload", "address", r.address)
			continue
		}
		out[r.address] = r.balance.Payload
	}

	slog.Info("completed fetching balances",
		"retrieved", len(out),
		"unique_addresses", len(addresses),
	)
	return out
}

// UniqueAddresses devuelve las direcciones de trader sin repetir, en orden de
// primera aparición. Las direcciones vacías se ignoran.
func UniqueAddresses(trades []domain.Trade) []string {
	seen := make(map[string]struct{}, len(trades))
	var out []string
	for _, t := range trades {
		if t.TraderAddress == "" {
			continue
		}
		if _, ok := seen[t.TraderAddress]; ok {
			continue
		}
		seen[t.TraderAddress] = struct{}{}
		out = append(out, t.TraderAddress)
	}
	return out
}

// attachBalances asigna a cada trade el balance de su trader, si existe.
func attachBalances(trades []domain.Trade, balances map[string]json.RawMessage) {
	for i := range trades {
		if b, ok := balances[trades[i].TraderAddress]; ok {
			trades[i].TraderBalance = b
		}
	}
}
