// Command generator writes the catalog registrations of the components of a
// module.
//
// It is meant to be invoked by go:generate from the file declaring the
// registry struct:
//
//	//go:generate go run github.com/sportlog/di/cmd/generator
//	type Registry struct {
//		di.EmptyRegistry
//	}
//
// The module is scanned for functions annotated with @component and types
// annotated with @abstract, and a Register method is generated next to the
// registry, in <file>_gen.go.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
)

type options struct {
	file    string
	dryRun  bool
	verbose bool
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "generator",
		Short: "Generate the catalog registrations of annotated components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", os.Getenv("GOFILE"), "file declaring the registry struct, defaults to $GOFILE")
	flags.BoolVar(&opts.dryRun, "dry-run", os.Getenv("DRY_RUN") == "true", "print the generated code instead of writing it")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every scanned package and component")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.DateTime}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if opts.file == "" {
		return fmt.Errorf("no target file, run through go:generate or set --file")
	}
	targetFile, err := filepath.Abs(opts.file)
	if err != nil {
		return fmt.Errorf("unable to resolve target file %s:\n\t%w", opts.file, err)
	}

	startScan := time.Now()

	moduleRoot := findModuleRoot(filepath.Dir(targetFile))
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Dir:     moduleRoot,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}, "./...")
	if err != nil {
		return fmt.Errorf("unable to load packages of %s:\n\t%w", moduleRoot, err)
	}

	result, err := newScanner(logger, targetFile).scan(pkgs)
	if err != nil {
		logger.Error().Err(err).Msg("Scan failed")
		return err
	}
	if result.Registry == nil {
		err = fmt.Errorf("no registry struct found in %s, declare one embedding di.EmptyRegistry", targetFile)
		logger.Error().Err(err).Msg("Scan failed")
		return err
	}

	logger.Info().Str("registry", result.Registry.StructName).Msg("Registry found")
	logger.Info().Int("count", len(result.Components)).Msg("Components found in the module")
	for _, c := range result.Components {
		logger.Debug().Msg(c.String())
	}
	logger.Info().Int("count", len(result.Abstracts)).Msg("Abstract types found in the module")
	logger.Info().Dur("elapsed", time.Since(startScan)).Msg("Scan completed")

	outputPath := filepath.Join(
		filepath.Dir(targetFile),
		strings.TrimSuffix(filepath.Base(targetFile), ".go")+"_gen.go",
	)
	code, err := newRenderer(result.Registry).render(outputPath, result)
	if err != nil {
		logger.Error().Err(err).Msg("Generation failed")
		return err
	}

	if opts.dryRun {
		_, err = cmd.OutOrStdout().Write(code)
		return err
	}
	if err := os.WriteFile(outputPath, code, 0o644); err != nil {
		return fmt.Errorf("unable to write %s:\n\t%w", outputPath, err)
	}
	logger.Info().Str("output", outputPath).Msg("Code generated successfully")

	return nil
}

func findModuleRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
