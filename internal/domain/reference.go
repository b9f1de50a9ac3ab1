package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Token es un token de un chain concreto. Varios tokens pueden compartir símbolo.
type Token struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
}

// Pool es un par de liquidez de un DEX, identificado por network + address.
type Pool struct {
	ID           string          `json:"id"`
	Name         string          `json:"name,omitempty"`
	Address      string          `json:"address"`
	Network      string          `json:"network"` // nombre visible del chain, no el identifier de la API
	Dex          string          `json:"dex"`
	Token1ID     string          `json:"token1_id"`
	Token2ID     string          `json:"token2_id"`
	BaseTokenID  string          `json:"base_token_id,omitempty"`
	ReserveUSD   decimal.Decimal `json:"reserve_in_usd"`
	SwapCount24h int64           `json:"swap_count_24h"`
}

// Matches indica si el pool conecta un token de input con uno de output,
// en cualquier orden. La dirección se resuelve después, por trade.
func (p Pool) Matches(input, output IDSet) bool {
	return (input.Has(p.Token1ID) && output.Has(p.Token2ID)) ||
		(input.Has(p.Token2ID) && output.Has(p.Token1ID))
}

// Chain es una red soportada por la API de market data.
type Chain struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Identifier            string `json:"identifier"` // segmento de path en la API
	ChainID               *int64 `json:"chain_id"`   // nil en redes no-EVM
	NativeCurrencySymbol  string `json:"native_currency_symbol"`
	NativeCurrencyAddress string `json:"native_currency_address"`
}

// IDSet es un conjunto de token ids.
type IDSet map[string]struct{}

// NewIDSet construye un IDSet con los ids dados.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has devuelve true si id pertenece al conjunto.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Empty devuelve true si el conjunto no tiene ids.
func (s IDSet) Empty() bool { return len(s) == 0 }

// NormalizeSymbol es la forma canónica de un símbolo para lookups.
func NormalizeSymbol(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
