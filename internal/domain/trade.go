package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownSymbol indica que un símbolo no existe en el dataset de tokens.
var ErrUnknownSymbol = errors.New("unknown token symbol")

// Trade es un swap normalizado respecto al par pedido por el usuario.
// InputToken/OutputToken siempre siguen la dirección del par, no la del wire.
type Trade struct {
	Timestamp     string          `json:"timestamp"` // ISO-8601 tal como lo devuelve la API
	TxHash        string          `json:"tx_hash"`
	TraderAddress string          `json:"trader_address"`
	InputAmount   decimal.Decimal `json:"input_amount"`
	OutputAmount  decimal.Decimal `json:"output_amount"`
	InputToken    string          `json:"input_token"`
	OutputToken   string          `json:"output_token"`
	PriceUSD      decimal.Decimal `json:"price_in_usd"`
	PoolAddress   string          `json:"pool_address"`
	Chain         string          `json:"chain"`
	TraderBalance json.RawMessage `json:"trader_balance,omitempty"` // solo tras el enrichment
}

// Pair es el par direccional pedido por el usuario.
type Pair struct {
	InputSymbol  string
	OutputSymbol string
}

func (p Pair) String() string { return p.InputSymbol + "/" + p.OutputSymbol }

// TradeQuery describe el crawl de trades de un pool.
type TradeQuery struct {
	Pool      Pool
	InputIDs  IDSet
	OutputIDs IDSet
	MaxTrades int
	WindowEnd time.Time     // "now" del pipeline, fijado al arrancar
	Lookback  time.Duration // ventana hacia atrás desde WindowEnd
}

// WindowStart devuelve el inicio de la ventana de búsqueda.
func (q TradeQuery) WindowStart() time.Time {
	return q.WindowEnd.Add(-q.Lookback)
}

// Balance es el payload opaco de balances de una wallet.
type Balance struct {
	Address string
	Payload json.RawMessage
}

// Empty devuelve true si el payload no aporta datos ("", null, {}).
func (b Balance) Empty() bool {
	switch string(b.Payload) {
	case "", "null", "{}":
		return true
	}
	return false
}
