package ports

import (
	"context"

	"github.com/alejandrodnm/tradescan/internal/domain"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	Notify(ctx context.Context, run domain.Run) error
}
