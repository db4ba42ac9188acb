package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"scalper/internal/observability"
)

// ErrInterrupted служит причиной отмены контекста по сигналу ОС.
var ErrInterrupted = errors.New("interrupted by signal")

// GracefulShutdown запускает мониторинг OS сигналов и возвращает context для отмены.
// По SIGINT/SIGTERM контекст отменяется с причиной ErrInterrupted.
func GracefulShutdown(logger *observability.Logger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = observability.Nop()
	}

	ctx, cancelCause := context.WithCancelCause(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancelCause(ErrInterrupted)
		case <-done:
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancelCause(context.Canceled)
		})
	}

	return ctx, cancel
}

// Interrupted сообщает, был ли контекст отменён сигналом.
func Interrupted(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrInterrupted)
}
