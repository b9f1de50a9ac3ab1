package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/tradescan/config"
	"github.com/alejandrodnm/tradescan/internal/adapters/arkham"
	"github.com/alejandrodnm/tradescan/internal/adapters/dataset"
	"github.com/alejandrodnm/tradescan/internal/adapters/geckoterminal"
	"github.com/alejandrodnm/tradescan/internal/adapters/governor"
	"github.com/alejandrodnm/tradescan/internal/adapters/notify"
	"github.com/alejandrodnm/tradescan/internal/adapters/storage"
	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/alejandrodnm/tradescan/internal/pipeline"
	"github.com/alejandrodnm/tradescan/internal/ports"
	"github.com/alejandrodnm/tradescan/internal/refdata"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	input := flag.String("in", "", "input token symbol (overrides config)")
	output := flag.String("out", "", "output token symbol (overrides config)")
	maxTrades := flag.Int("max", 0, "max trades to keep (overrides config)")
	dryRun := flag.Bool("dry-run", false, "do not persist the run to storage")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the trades table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *input != "" {
		cfg.Pipeline.InputSymbol = *input
	}
	if *output != "" {
		cfg.Pipeline.OutputSymbol = *output
	}
	if *maxTrades > 0 {
		cfg.Pipeline.MaxTrades = *maxTrades
	}
	setupLogger(cfg.Log)

	pair := domain.Pair{InputSymbol: cfg.Pipeline.InputSymbol, OutputSymbol: cfg.Pipeline.OutputSymbol}
	slog.Info("tradescan starting",
		"config", *configPath,
		"pair", pair.String(),
		"max_trades", cfg.Pipeline.MaxTrades,
		"limiter", cfg.Governor.Mode,
		"shared_budget", cfg.Governor.SharedBudget,
		"dry_run", *dryRun,
	)

	ds, err := dataset.Load(cfg.Datasets.Pools, cfg.Datasets.Tokens, cfg.Datasets.Chains)
	if err != nil {
		slog.Error("failed to load datasets", "err", err)
		os.Exit(1)
	}
	index := refdata.New(ds.Pools, ds.Tokens, ds.Chains)
	pools, tokens, chains := index.Stats()
	slog.Info("reference data loaded", "pools", pools, "tokens", tokens, "chains", chains)

	marketGov, balanceGov := newGovernors(cfg)

	market, err := geckoterminal.NewClient(cfg.API.MarketBase, cfg.API.UserAgent, marketGov, index)
	if err != nil {
		slog.Error("invalid market API base", "err", err, "base", cfg.API.MarketBase)
		os.Exit(1)
	}
	if cfg.API.BalanceSecret == "" {
		slog.Warn("BALANCE_API_SECRET not set, trades will not be enriched")
	}
	balances := arkham.NewClient(cfg.API.BalanceBase, cfg.API.BalanceSecret, balanceGov)

	var store ports.Storage
	if !*dryRun {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	notifiers := notify.Multi{notify.NewConsole(*table)}
	if cfg.Output.JSONPath != "" {
		notifiers = append(notifiers, notify.NewJSONFile(cfg.Output.JSONPath))
	}

	p := pipeline.New(pipeline.Config{
		MaxTrades:     cfg.Pipeline.MaxTrades,
		FetchWorkers:  cfg.Pipeline.FetchWorkers,
		EnrichWorkers: cfg.Pipeline.EnrichWorkers,
		Lookback:      cfg.Lookback(),
	}, index, market, balances, store, notifiers)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run, err := p.Run(ctx, pair, time.Now().UTC())
	if err != nil {
		slog.Error("run failed", "err", err, "pair", pair.String())
		if errors.Is(err, domain.ErrUnknownSymbol) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	slog.Info("tradescan finished", "run_id", run.ID, "trades", len(run.Trades))
}

// newGovernors crea un Governor por API. Con shared_budget ambos usan el
// mismo limiter; si no, cada API tiene su propio presupuesto.
func newGovernors(cfg *config.Config) (market, balances *governor.Governor) {
	newLimiter := func() governor.Limiter {
		if cfg.Governor.Mode == "token" {
			return governor.NewTokenBucket(cfg.Governor.Burst, cfg.Window())
		}
		return governor.NewWindowLimiter(cfg.Governor.Burst, cfg.Window())
	}

	marketLimiter := newLimiter()
	balanceLimiter := marketLimiter
	if !cfg.Governor.SharedBudget {
		balanceLimiter = newLimiter()
	}

	client := &http.Client{Timeout: cfg.Timeout()}
	opts := []governor.Option{
		governor.WithMaxAttempts(cfg.Governor.MaxAttempts),
		governor.WithInitialDelay(cfg.InitialDelay()),
	}
	return governor.New(client, marketLimiter, opts...), governor.New(client, balanceLimiter, opts...)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
