package pipeline

// concurrent.go — worker pools acotados para las dos fases del pipeline.
// Cada tarea devuelve un resultado etiquetado por un canal; el único que
// escribe en los acumuladores es la goroutine que llama (fan-in).

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/alejandrodnm/tradescan/internal/ports"
)

// poolResult es el resultado etiquetado del fetch de un pool.
type poolResult struct {
	index  int
	pool   domain.Pool
	trades []domain.Trade
	err    error
}

// fetchPoolsConcurrent lanza un fetch por pool con como máximo workers
// goroutines. Los resultados se devuelven en el orden de pools, no en el de
// finalización, para que el ranking posterior no dependa de qué pool
// terminó antes.
func fetchPoolsConcurrent(
	ctx context.Context,
	provider ports.TradeProvider,
	pools []domain.Pool,
	base domain.TradeQuery,
	workers int,
) []poolResult {
	if workers <= 0 {
		workers = DefaultFetchWorkers
	}

	type poolTask struct {
		index int
		pool  domain.Pool
	}

	workCh := make(chan poolTask, len(pools))
	resultCh := make(chan poolResult, len(pools))

	var wg sync.WaitGroup
	for i := 0; i < min(workers, len(pools)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range workCh {
				q := base
				q.Pool = task.pool
				slog.Info("fetching trades for pool", "pool", task.pool.Address, "network", task.pool.Network)
				trades, err := provider.FetchTrades(ctx, q)
				resultCh <- poolResult{index: task.index, pool: task.pool, trades: trades, err: err}
			}
		}()
	}

	for i, p := range pools {
		workCh <- poolTask{index: i, pool: p}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]poolResult, len(pools))
	for r := range resultCh {
		results[r.index] = r
	}
	return results
}

// balanceResult es el resultado etiquetado del fetch de una dirección.
type balanceResult struct {
	address string
	balance domain.Balance
	err     error
}

// fetchBalancesConcurrent consulta cada dirección una sola vez con como
// máximo workers goroutines.
func fetchBalancesConcurrent(
	ctx context.Context,
	provider ports.BalanceProvider,
	addresses []string,
	workers int,
) []balanceResult {
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}

	workCh := make(chan string, len(addresses))
	resultCh := make(chan balanceResult, len(addresses))

	var wg sync.WaitGroup
	for i := 0; i < min(workers, len(addresses)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range workCh {
				slog.Debug("fetching balance", "address", addr)
				bal, err := provider.FetchBalance(ctx, addr)
				resultCh <- balanceResult{address: addr, balance: bal, err: err}
			}
		}()
	}

	for _, a := range addresses {
		workCh <- a
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]balanceResult, 0, len(addresses))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}
