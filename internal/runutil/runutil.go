// Package runutil wires OS signal delivery into context cancellation for
// the CLI's long-running subcommands (watch --follow, dial), adapted from
// solidcoredata-dca's internal/start package: the errgroup-based fan-out
// is kept, generalized from a single StartFunc into RunAll's variadic
// form which the CLI's concurrent read-loop/TUI pairing needs directly.
package runutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// RunAll runs every fn concurrently under a context canceled by SIGINT or
// SIGTERM, or by any fn returning a non-nil error (errgroup.WithContext
// semantics). It returns the first error encountered, mirroring
// solidcoredata-dca's RunAll but adding the signal wiring that caller used
// to set up separately via Start.
func RunAll(parent context.Context, fns ...func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		group.Go(func() error { return fn(ctx) })
	}
	return group.Wait()
}
