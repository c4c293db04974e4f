package hello

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type HelloRunner struct {
	logger  zerolog.Logger
	greeter Greeter
	pause   time.Duration
}

// NewHelloRunner greets, then waits a bit before exiting.
//
// @component named="hello.runner"
func NewHelloRunner(
	logger zerolog.Logger,
	greeter Greeter,
	pause time.Duration, // @inject default="2s"
) *HelloRunner {
	return &HelloRunner{
		logger:  logger.With().Str("component", "hello").Logger(),
		greeter: greeter,
		pause:   pause,
	}
}

func (r *HelloRunner) Run(ctx context.Context) error {
	r.logger.Info().Msg(r.greeter.Greet())
	r.logger.Info().Dur("pause", r.pause).Msg("sleeping")

	select {
	case <-ctx.Done():
		r.logger.Info().Msg("context cancelled, exiting early")
		return ctx.Err()
	case <-time.After(r.pause):
	}

	r.logger.Info().Msg("done sleeping, exiting now")
	return nil
}
