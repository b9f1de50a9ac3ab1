package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/alejandrodnm/tradescan/internal/ports"
)

// JSONFile escribe los trades enriquecidos de cada run como un array JSON.
// El fichero se reemplaza en cada run.
type JSONFile struct {
	path string
}

// NewJSONFile crea un notificador que escribe en path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Notify implementa ports.Notifier.
func (j *JSONFile) Notify(_ context.Context, run domain.Run) error {
	trades := run.Trades
	if trades == nil {
		trades = []domain.Trade{}
	}
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("notify.JSONFile: marshal: %w", err)
	}

	// escribir a un temporal y renombrar para no dejar ficheros a medias
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("notify.JSONFile: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("notify.JSONFile: rename to %q: %w", j.path, err)
	}

	slog.Info("trades written", "path", filepath.Clean(j.path), "count", len(trades))
	return nil
}

// Multi reparte cada run entre varios notificadores. Un error en uno no
// impide los demás; se devuelve el primero.
type Multi []ports.Notifier

// Notify implementa ports.Notifier.
func (m Multi) Notify(ctx context.Context, run domain.Run) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, run); err != nil && first == nil {
			first = err
		}
	}
	return first
}
