// Package runner runs long-lived components resolved from a container.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sportlog/di"
)

type (
	// Runnable is a component running until its context is done or it fails.
	Runnable interface {
		Run(ctx context.Context) error
	}

	// RunnableFunc adapts a function to Runnable.
	RunnableFunc func(ctx context.Context) error
)

func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunAll runs the runnables concurrently and waits for all of them.
//
// The first failure cancels the context given to the others and is returned.
func RunAll(parentCtx context.Context, runnables ...Runnable) error {
	group, ctx := errgroup.WithContext(parentCtx)
	for _, runnable := range runnables {
		group.Go(func() error {
			return runnable.Run(ctx)
		})
	}
	return group.Wait()
}

// Resolve gets the entries registered under ids, each of them must be a
// Runnable.
func Resolve(r di.Resolver, ids ...di.Identifier) ([]Runnable, error) {
	runnables := make([]Runnable, 0, len(ids))
	for _, id := range ids {
		runnable, err := di.Get[Runnable](r, id)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve runnable %q:\n\t%w", id, err)
		}
		if runnable == nil {
			return nil, fmt.Errorf("entry %q resolved to nil, not a runnable", id)
		}
		runnables = append(runnables, runnable)
	}
	return runnables, nil
}

// Start resolves the runnables registered under ids and runs them with RunAll.
func Start(ctx context.Context, r di.Resolver, ids ...di.Identifier) error {
	runnables, err := Resolve(r, ids...)
	if err != nil {
		return err
	}
	return RunAll(ctx, runnables...)
}

// WithSyscallKillableContext returns a context cancelled on SIGINT or SIGTERM.
func WithSyscallKillableContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
