// Package refdata construye los índices en memoria sobre los datasets de
// pools, tokens y chains. El Index es de solo lectura tras New y se puede
// compartir entre goroutines sin locks.
package refdata

import (
	"github.com/alejandrodnm/tradescan/internal/domain"
)

// Index responde lookups de símbolo, pools y chains.
type Index struct {
	pools       []domain.Pool
	symbolToIDs map[string][]string
	chainByName map[string]string
	tokenCount  int
}

// New construye el índice una sola vez a partir de los tres datasets.
func New(pools []domain.Pool, tokens []domain.Token, chains []domain.Chain) *Index {
	idx := &Index{
		pools:       pools,
		symbolToIDs: make(map[string][]string),
		chainByName: make(map[string]string, len(chains)),
		tokenCount:  len(tokens),
	}
	for _, t := range tokens {
		sym := domain.NormalizeSymbol(t.Symbol)
		idx.symbolToIDs[sym] = append(idx.symbolToIDs[sym], t.ID)
	}
	for _, c := range chains {
		// el primero gana, igual que una búsqueda lineal
		if _, ok := idx.chainByName[c.Name]; !ok {
			idx.chainByName[c.Name] = c.Identifier
		}
	}
	return idx
}

// TokenIDsForSymbol devuelve los ids de todos los tokens con ese símbolo
// (case-insensitive). Un símbolo desconocido devuelve un set vacío.
func (i *Index) TokenIDsForSymbol(symbol string) domain.IDSet {
	return domain.NewIDSet(i.symbolToIDs[domain.NormalizeSymbol(symbol)]...)
}

// MatchingPools devuelve los pools cuyo par de tokens conecta inputIDs con
// outputIDs, sin importar el orden token1/token2.
func (i *Index) MatchingPools(inputIDs, outputIDs domain.IDSet) []domain.Pool {
	if inputIDs.Empty() || outputIDs.Empty() {
		return nil
	}
	var out []domain.Pool
	for _, p := range i.pools {
		if p.Matches(inputIDs, outputIDs) {
			out = append(out, p)
		}
	}
	return out
}

// ChainIdentifier implementa ports.ChainResolver.
func (i *Index) ChainIdentifier(networkName string) (string, bool) {
	id, ok := i.chainByName[networkName]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Stats devuelve el tamaño de cada dataset indexado.
func (i *Index) Stats() (pools, tokens, chains int) {
	return len(i.pools), i.tokenCount, len(i.chainByName)
}
