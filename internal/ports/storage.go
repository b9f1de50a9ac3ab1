package ports

import (
	"context"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/google/uuid"
)

// Storage persiste los resultados de cada ejecución del pipeline.
type Storage interface {
	// SaveRun persiste el resumen del run y sus trades enriquecidos.
	SaveRun(ctx context.Context, run domain.Run) error

	// GetRunTrades devuelve los trades de un run en el orden del ranking.
	GetRunTrades(ctx context.Context, runID uuid.UUID) ([]domain.Trade, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
