package di

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportlog/di/config"
	"github.com/sportlog/di/option"
)

const settingsEnvPrefix = "DI"

// Settings configure the ambient behavior of a container.
type Settings struct {
	// LogLevel is read from DI_LOG_LEVEL, "disabled" by default.
	LogLevel string
	// LogFormat is read from DI_LOG_FORMAT, either "json" (default) or "console".
	LogFormat string
}

func (s *Settings) ApplyDefault() {
	if s.LogLevel == "" {
		s.LogLevel = "disabled"
	}
	if s.LogFormat == "" {
		s.LogFormat = "json"
	}
}

// LoadSettings reads the settings from the DI_* environment variables.
func LoadSettings(opts ...option.Option[config.Options]) (*Settings, error) {
	return config.Load[Settings](append([]option.Option[config.Options]{config.WithEnvPrefix(settingsEnvPrefix)}, opts...)...)
}

// Logger builds the logger described by the settings, writing to w.
func (s *Settings) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %s:\n\t%w", s.LogLevel, err)
	}

	switch strings.ToLower(s.LogFormat) {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %s, expected json or console", s.LogFormat)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// NewFromEnv creates a container logging to stderr as configured by the
// DI_* environment variables. opts are applied after the logger.
func NewFromEnv(opts ...option.Option[Options]) (*Container, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load container settings:\n\t%w", err)
	}
	logger, err := settings.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return New(append([]option.Option[Options]{WithLogger(logger)}, opts...)...), nil
}
