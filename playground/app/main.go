package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/sportlog/di"
	"github.com/sportlog/di/config"
	appconfig "github.com/sportlog/di/playground/app/config"
	"github.com/sportlog/di/playground/app/hello"
	"github.com/sportlog/di/playground/app/registry"
	"github.com/sportlog/di/runner"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func run() error {
	settings, err := di.LoadSettings(config.WithDotEnv(".env"))
	if err != nil {
		return err
	}
	logger, err := settings.Logger(os.Stderr)
	if err != nil {
		return err
	}

	conf, err := config.Load[appconfig.Config](config.WithEnvPrefix("PG"), config.WithDotEnv(".env"))
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load configuration")
		return err
	}

	c := di.New(
		di.WithCatalog(di.NewCatalog().Install(registry.Registry{})),
		di.WithLogger(logger),
	)
	//goland:noinspection GoUnhandledErrorResult
	defer c.Close()

	c.MustSet(di.IdentifierOf[hello.Greeter](), di.IdentifierOf[*hello.PoliteGreeter]()).
		MustSet("greeting.target", func(conf *appconfig.Config) string {
			return conf.Greeting.Target
		})
	if err := c.Instance(di.IdentifierOf[*appconfig.Config](), conf); err != nil {
		return err
	}
	if err := c.Instance(di.IdentifierOf[zerolog.Logger](), logger); err != nil {
		return err
	}

	logger.Debug().Str("env", conf.Environment).Msgf("here is what we have before running:\n%s", c.Describe())

	ctx, cancel := runner.WithSyscallKillableContext(context.Background())
	defer cancel()

	if err := runner.Start(ctx, c, "hello.runner"); err != nil {
		logger.Error().Err(err).Msg("Error running app")
		return err
	}

	logger.Debug().Msgf("here is what we have at the end:\n%s", c.Describe())
	logger.Info().Msg("bye.")

	return nil
}
