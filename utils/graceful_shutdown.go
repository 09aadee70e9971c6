package utils

import (
	"context"
	"fmt"
)

// GracefulShutdown blocks until the context is cancelled, then runs the
// cleanup hooks in order. Intended to run in its own goroutine alongside a
// signal.NotifyContext.
func GracefulShutdown(ctx context.Context, done func(), cleanups ...func()) {
	<-ctx.Done()
	fmt.Println("\nShutting down...")
	for _, cleanup := range cleanups {
		cleanup()
	}
	if done != nil {
		done()
	}
}
