package governor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBurst  = 5
	DefaultWindow = 5 * time.Second
)

// Limiter bloquea hasta que haya presupuesto para un request más.
// *rate.Limiter cumple esta interfaz.
type Limiter interface {
	Wait(ctx context.Context) error
}

// WindowLimiter deja pasar burst requests por ventana. El request burst+1
// espera lo que falte para completar window desde el primero de la ventana,
// y abre una ventana nueva.
//
// El mutex solo protege el contador y el inicio de ventana; la espera se
// hace con el lock liberado.
type WindowLimiter struct {
	mu     sync.Mutex
	burst  int
	window time.Duration
	count  int
	start  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWindowLimiter crea un WindowLimiter. Valores <= 0 usan los defaults.
func NewWindowLimiter(burst int, window time.Duration) *WindowLimiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &WindowLimiter{
		burst:  burst,
		window: window,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// NewTokenBucket crea un token bucket de x/time/rate con el mismo presupuesto
// medio (burst requests por window), pero con refill continuo.
func NewTokenBucket(burst int, window time.Duration) *rate.Limiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return rate.NewLimiter(rate.Every(window/time.Duration(burst)), burst)
}

// Wait implementa Limiter.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wait := l.reserve()
	if wait <= 0 {
		return nil
	}
	return l.sleep(ctx, wait)
}

// reserve cuenta el request y devuelve cuánto debe esperar el caller.
func (l *WindowLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.count == 0 {
		l.start = now
	}
	if l.count < l.burst {
		l.count++
		// la ventana actual puede empezar en el futuro si otro caller la abrió esperando
		if l.start.After(now) {
			return l.start.Sub(now)
		}
		return 0
	}

	var wait time.Duration
	if elapsed := now.Sub(l.start); elapsed < l.window {
		wait = l.window - elapsed
	}
	// la ventana nueva empieza cuando el caller termine de esperar
	l.start = now.Add(wait)
	l.count = 1
	return wait
}

// sleepCtx duerme d o hasta que se cancele ctx.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
