package domain

import (
	"time"

	"github.com/google/uuid"
)

// PoolOutcome es el resultado etiquetado del fetch de un pool.
type PoolOutcome struct {
	PoolID      string
	PoolAddress string
	Network     string
	Trades      int
	Err         error
}

// Failed devuelve true si la tarea del pool falló.
func (o PoolOutcome) Failed() bool { return o.Err != nil }

// Run es el resultado completo de una ejecución del pipeline.
type Run struct {
	ID         uuid.UUID
	Pair       Pair
	StartedAt  time.Time // también es el extremo final de la ventana de trades
	FinishedAt time.Time
	Pools      []PoolOutcome
	Addresses  int // direcciones únicas consultadas
	Balances   int // direcciones con balance obtenido
	Trades     []Trade
}

// NewRun crea un Run con un id nuevo.
func NewRun(pair Pair, startedAt time.Time) Run {
	return Run{
		ID:        uuid.New(),
		Pair:      pair,
		StartedAt: startedAt.UTC(),
	}
}

// FailedPools cuenta los pools cuya tarea terminó en error.
func (r Run) FailedPools() int {
	n := 0
	for _, p := range r.Pools {
		if p.Failed() {
			n++
		}
	}
	return n
}
