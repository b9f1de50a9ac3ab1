// Package dataset carga las tablas normalizadas de pools, tokens y chains.
// Los ficheros son arrays JSON planos, uno por tabla.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// Datasets agrupa las tres tablas de referencia.
type Datasets struct {
	Pools  []domain.Pool
	Tokens []domain.Token
	Chains []domain.Chain
}

// Load carga las tres tablas desde sus rutas.
func Load(poolsPath, tokensPath, chainsPath string) (Datasets, error) {
	var ds Datasets
	var err error
	if ds.Pools, err = LoadPools(poolsPath); err != nil {
		return Datasets{}, err
	}
	if ds.Tokens, err = LoadTokens(tokensPath); err != nil {
		return Datasets{}, err
	}
	if ds.Chains, err = LoadChains(chainsPath); err != nil {
		return Datasets{}, err
	}
	return ds, nil
}

// LoadPools decodifica el fichero de pools.
func LoadPools(path string) ([]domain.Pool, error) {
	var pools []domain.Pool
	if err := readJSON(path, &pools); err != nil {
		return nil, fmt.Errorf("dataset.LoadPools: %w", err)
	}
	return pools, nil
}

// LoadTokens decodifica el fichero de tokens.
func LoadTokens(path string) ([]domain.Token, error) {
	var tokens []domain.Token
	if err := readJSON(path, &tokens); err != nil {
		return nil, fmt.Errorf("dataset.LoadTokens: %w", err)
	}
	return tokens, nil
}

// LoadChains decodifica el fichero de chains.
func LoadChains(path string) ([]domain.Chain, error) {
	var chains []domain.Chain
	if err := readJSON(path, &chains); err != nil {
		return nil, fmt.Errorf("dataset.LoadChains: %w", err)
	}
	return chains, nil
}

func readJSON(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	return nil
}
