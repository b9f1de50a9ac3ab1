// Package pipeline orquesta un run completo: resolver símbolos, crawl de
// trades por pool en paralelo, merge/ranking y enrichment de balances.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/alejandrodnm/tradescan/internal/ports"
)

const (
	DefaultMaxTrades     = 1000
	DefaultFetchWorkers  = 5
	DefaultEnrichWorkers = 10
	DefaultLookback      = time.Minute
)

// Config contiene los límites de un run.
type Config struct {
	MaxTrades     int
	FetchWorkers  int
	EnrichWorkers int
	Lookback      time.Duration
}

// DefaultConfig devuelve la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		MaxTrades:     DefaultMaxTrades,
		FetchWorkers:  DefaultFetchWorkers,
		EnrichWorkers: DefaultEnrichWorkers,
		Lookback:      DefaultLookback,
	}
}

// ReferenceIndex resuelve símbolos y pools (refdata.Index).
type ReferenceIndex interface {
	TokenIDsForSymbol(symbol string) domain.IDSet
	MatchingPools(inputIDs, outputIDs domain.IDSet) []domain.Pool
}

// Pipeline es el orquestador de un run.
type Pipeline struct {
	cfg      Config
	index    ReferenceIndex
	trades   ports.TradeProvider
	enricher *Enricher
	storage  ports.Storage
	notifier ports.Notifier
}

// New crea un Pipeline con todas las dependencias inyectadas.
// storage y notifier pueden ser nil.
func New(
	cfg Config,
	index ReferenceIndex,
	trades ports.TradeProvider,
	balances ports.BalanceProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) *Pipeline {
	if cfg.MaxTrades <= 0 {
		cfg.MaxTrades = DefaultMaxTrades
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	return &Pipeline{
		cfg:      cfg,
		index:    index,
		trades:   trades,
		enricher: NewEnricher(balances, cfg.EnrichWorkers),
		storage:  storage,
		notifier: notifier,
	}
}

// Run ejecuta un run y luego notifica y persiste el resultado. Los errores
// de notifier/storage se loguean pero no invalidan el run.
func (p *Pipeline) Run(ctx context.Context, pair domain.Pair, now time.Time) (domain.Run, error) {
	run, err := p.RunOnce(ctx, pair, now)
	if err != nil {
		return run, err
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, run); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if p.storage != nil {
		if err := p.storage.SaveRun(ctx, run); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	return run, nil
}

// RunOnce ejecuta resolve → fetch → rank → enrich. now es el extremo final
// de la ventana de trades y se fija una vez por run.
//
// El único error es un símbolo desconocido (domain.ErrUnknownSymbol), en cuyo
// caso no se hace ninguna llamada de red.
func (p *Pipeline) RunOnce(ctx context.Context, pair domain.Pair, now time.Time) (domain.Run, error) {
	run := domain.NewRun(pair, now)

	inputIDs := p.index.TokenIDsForSymbol(pair.InputSymbol)
	outputIDs := p.index.TokenIDsForSymbol(pair.OutputSymbol)
	if inputIDs.Empty() || outputIDs.Empty() {
		slog.Error("token symbols not found", "input", pair.InputSymbol, "output", pair.OutputSymbol)
		run.FinishedAt = time.Now().UTC()
		return run, fmt.Errorf("pipeline.RunOnce: %w: %s", domain.ErrUnknownSymbol, pair)
	}

	pools := p.index.MatchingPools(inputIDs, outputIDs)
	slog.Info("matching pools", "pair", pair.String(), "count", len(pools))

	base := domain.TradeQuery{
		InputIDs:  inputIDs,
		OutputIDs: outputIDs,
		MaxTrades: p.cfg.MaxTrades,
		WindowEnd: run.StartedAt,
		Lookback:  p.cfg.Lookback,
	}

	var all []domain.Trade
	for _, r := range fetchPoolsConcurrent(ctx, p.trades, pools, base, p.cfg.FetchWorkers) {
		outcome := domain.PoolOutcome{
			PoolID:      r.pool.ID,
			PoolAddress: r.pool.Address,
			Network:     r.pool.Network,
		}
		if r.err != nil {
			// la contribución del pool es cero; el resto no se ve afectado
			slog.Error("pool generated an error", "pool", r.pool.Address, "err", r.err)
			outcome.Err = r.err
		} else {
			outcome.Trades = len(r.trades)
			all = append(all, r.trades...)
			slog.Info("fetched trades from pool", "pool", r.pool.Address, "count", len(r.trades))
		}
		run.Pools = append(run.Pools, outcome)
	}

	run.Trades = rankTrades(all, p.cfg.MaxTrades)

	balances := p.enricher.FetchBalances(ctx, run.Trades)
	attachBalances(run.Trades, balances)
	run.Addresses = len(UniqueAddresses(run.Trades))
	run.Balances = len(balances)
	run.FinishedAt = time.Now().UTC()

	slog.Info("run complete",
		"run_id", run.ID,
		"pools", len(run.Pools),
		"failed_pools", run.FailedPools(),
		"trades", len(run.Trades),
		"balances", run.Balances,
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
	)
	return run, nil
}
