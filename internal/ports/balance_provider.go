package ports

import (
	"context"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// BalanceProvider obtiene el balance on-chain de una wallet.
type BalanceProvider interface {
	FetchBalance(ctx context.Context, address string) (domain.Balance, error)
}
