package pipeline

import (
	"sort"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// rankTrades ordena por timestamp descendente y corta a maxTrades.
// Los timestamps ISO-8601 con formato fijo ordenan bien como strings; el
// sort es estable para que empates mantengan el orden de entrada.
func rankTrades(trades []domain.Trade, maxTrades int) []domain.Trade {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp > trades[j].Timestamp
	})
	if maxTrades >= 0 && len(trades) > maxTrades {
		trades = trades[:maxTrades]
	}
	return trades
}
