package governor

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRetriesExhausted se devuelve cuando se agotan los intentos por 429 o
// errores de transporte. Envuelve también el último error visto.
var ErrRetriesExhausted = errors.New("max retries reached")

// StatusError es una respuesta no-200 que no se reintenta.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsRateLimited devuelve true si el servidor respondió 429.
func (e *StatusError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
