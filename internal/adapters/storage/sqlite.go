package storage

// sqlite.go — histórico de runs.
//
// Estrategia:
//   - `runs`: una fila por run con el par, la ventana y los contadores.
//   - `run_pools`: resultado de cada pool del run (trades o error).
//   - `trades`: los trades finales del run, con su posición en el ranking.
//     Los decimales se guardan como TEXT para no perder precisión.
//   - Prune automático al arrancar: runs > 30d (cascade a pools y trades).

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    input_symbol  TEXT     NOT NULL,
    output_symbol TEXT     NOT NULL,
    started_at    DATETIME NOT NULL,
    finished_at   DATETIME,
    pools         INTEGER  NOT NULL DEFAULT 0,
    failed_pools  INTEGER  NOT NULL DEFAULT 0,
    addresses     INTEGER  NOT NULL DEFAULT 0,
    balances      INTEGER  NOT NULL DEFAULT 0,
    trades        INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_pools (
    run_id       TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    pool_id      TEXT    NOT NULL,
    pool_address TEXT    NOT NULL,
    network      TEXT    NOT NULL,
    trades       INTEGER NOT NULL DEFAULT 0,
    error        TEXT,
    PRIMARY KEY (run_id, pool_id)
);

CREATE TABLE IF NOT EXISTS trades (
    run_id         TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    rank           INTEGER NOT NULL,
    timestamp      TEXT    NOT NULL,
    tx_hash        TEXT    NOT NULL,
    trader_address TEXT    NOT NULL,
    input_amount   TEXT    NOT NULL,
    output_amount  TEXT    NOT NULL,
    input_token    TEXT    NOT NULL,
    output_token   TEXT    NOT NULL,
    price_usd      TEXT    NOT NULL,
    pool_address   TEXT    NOT NULL,
    chain          TEXT    NOT NULL,
    trader_balance TEXT,
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_started  ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_trader ON trades(trader_address);
`

const retentionRuns = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el run, el resultado de cada pool y los trades finales
// en una sola transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	var finishedAt *time.Time
	if !run.FinishedAt.IsZero() {
		t := run.FinishedAt.UTC()
		finishedAt = &t
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, input_symbol, output_symbol, started_at, finished_at,
			 pools, failed_pools, addresses, balances, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Pair.InputSymbol, run.Pair.OutputSymbol,
		run.StartedAt.UTC(), finishedAt,
		len(run.Pools), run.FailedPools(), run.Addresses, run.Balances, len(run.Trades),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	for _, p := range run.Pools {
		var errText *string
		if p.Err != nil {
			msg := p.Err.Error()
			errText = &msg
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_pools (run_id, pool_id, pool_address, network, trades, error)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID.String(), p.PoolID, p.PoolAddress, p.Network, p.Trades, errText,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert pool %s: %w", p.PoolID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, rank, timestamp, tx_hash, trader_address,
			 input_amount, output_amount, input_token, output_token,
			 price_usd, pool_address, chain, trader_balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for i, t := range run.Trades {
		var balance *string
		if len(t.TraderBalance) > 0 {
			b := string(t.TraderBalance)
			balance = &b
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), i, t.Timestamp, t.TxHash, t.TraderAddress,
			t.InputAmount.String(), t.OutputAmount.String(), t.InputToken, t.OutputToken,
			t.PriceUSD.String(), t.PoolAddress, t.Chain, balance,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade %s: %w", t.TxHash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRunTrades devuelve los trades de un run ordenados por ranking.
func (s *SQLiteStorage) GetRunTrades(ctx context.Context, runID uuid.UUID) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, tx_hash, trader_address, input_amount, output_amount,
		       input_token, output_token, price_usd, pool_address, chain, trader_balance
		FROM trades
		WHERE run_id = ?
		ORDER BY rank ASC
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("storage.GetRunTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var inAmt, outAmt, price string
		var balance sql.NullString

		if err := rows.Scan(
			&t.Timestamp, &t.TxHash, &t.TraderAddress, &inAmt, &outAmt,
			&t.InputToken, &t.OutputToken, &price, &t.PoolAddress, &t.Chain, &balance,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRunTrades: scan row: %w", err)
		}

		if t.InputAmount, err = decimal.NewFromString(inAmt); err != nil {
			return nil, fmt.Errorf("storage.GetRunTrades: parse input_amount of %s: %w", t.TxHash, err)
		}
		if t.OutputAmount, err = decimal.NewFromString(outAmt); err != nil {
			return nil, fmt.Errorf("storage.GetRunTrades: parse output_amount of %s: %w", t.TxHash, err)
		}
		if t.PriceUSD, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("storage.GetRunTrades: parse price_usd of %s: %w", t.TxHash, err)
		}
		if balance.Valid {
			t.TraderBalance = json.RawMessage(balance.String)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina runs antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		slog.Warn("prune old runs failed", "err", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("pruned old runs", "count", n)
	}
}
