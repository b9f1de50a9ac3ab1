package geckoterminal

import (
	"errors"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

var errMissingTokens = errors.New("swap without from/to token relationships")

// toDomainTrade normaliza un swap respecto al par pedido: si from_token está
// en los ids de input, input=from; si no, se invierte la asignación.
func toDomainTrade(s rawSwap, q domain.TradeQuery) (domain.Trade, error) {
	fromID := s.Relationships.FromToken.Data.ID
	toID := s.Relationships.ToToken.Data.ID
	if fromID == "" || toID == "" {
		return domain.Trade{}, errMissingTokens
	}

	a := s.Attributes
	t := domain.Trade{
		Timestamp:     a.Timestamp,
		TxHash:        a.TxHash,
		TraderAddress: a.TxFromAddress,
		PoolAddress:   q.Pool.Address,
		Chain:         q.Pool.Network,
	}

	if q.InputIDs.Has(fromID) {
		t.InputToken, t.OutputToken = fromID, toID
		t.InputAmount, t.OutputAmount = a.FromTokenAmount, a.ToTokenAmount
		t.PriceUSD = a.PriceFromInUSD
	} else {
		t.InputToken, t.OutputToken = toID, fromID
		t.InputAmount, t.OutputAmount = a.ToTokenAmount, a.FromTokenAmount
		t.PriceUSD = a.PriceToInUSD
	}
	return t, nil
}
