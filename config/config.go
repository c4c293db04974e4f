// Package config loads typed configuration structs from the environment.
//
// Every leaf field of the target struct is bound to an environment variable
// named after its path, in screaming snake case, optionally prefixed:
// with the prefix "DI", the field LogLevel is read from DI_LOG_LEVEL and the
// nested field Trace.Enabled from DI_TRACE_ENABLED.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sportlog/di/option"
	"github.com/sportlog/di/reflectutils"
	"github.com/sportlog/di/str"
)

type (
	Options struct {
		prefix   string
		envFiles []string
	}

	// WithDefault is implemented by configuration structs able to fill their
	// own blanks once the environment has been read.
	WithDefault interface {
		ApplyDefault()
	}
)

var withDefaultType = reflect.TypeOf((*WithDefault)(nil)).Elem()

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithDotEnv loads the given files into the process environment before
// binding. Missing files are ignored; an existing variable is never overridden.
func WithDotEnv(files ...string) option.Option[Options] {
	return func(opts *Options) {
		opts.envFiles = append(opts.envFiles, files...)
	}
}

// Load builds a T from the environment.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	for _, file := range options.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %s:\n\t%w", file, err)
		}
	}

	v := viper.New()
	var target T
	typ := reflect.TypeOf(target)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("config target must be a struct, got %T", target)
	}
	bindEnvs(v, options.prefix, typ)

	if err := v.Unmarshal(&target); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config %T:\n\t%w", target, err)
	}

	reflectutils.WalkStruct(
		&target,
		reflectutils.AllVisitors(
			reflectutils.CreateNilStructs,
			applyDefault,
		),
	)

	return &target, nil
}

func applyDefault(val reflect.Value, typ reflect.Type, _ []string) {
	if !typ.Implements(withDefaultType) || !val.IsValid() {
		return
	}
	if typ.Kind() == reflect.Pointer && val.IsNil() {
		return
	}
	val.Interface().(WithDefault).ApplyDefault()
}

func bindEnvs(v *viper.Viper, prefix string, typ reflect.Type, parts ...string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := field.Tag.Lookup("mapstructure")
		if !ok {
			name = field.Name
		}

		fieldTyp := field.Type
		if fieldTyp.Kind() == reflect.Pointer && fieldTyp.Elem().Kind() == reflect.Struct {
			fieldTyp = fieldTyp.Elem()
		}
		if fieldTyp.Kind() == reflect.Struct {
			bindEnvs(v, prefix, fieldTyp, append(parts, name)...)
			continue
		}

		key := strings.Join(append(parts, name), ".")
		_ = v.BindEnv(key, envName(prefix, append(parts, name)))
	}
}

func envName(prefix string, path []string) string {
	tokens := make([]string, 0, len(path)+1)
	if prefix != "" {
		tokens = append(tokens, strings.ToUpper(prefix))
	}
	for _, p := range path {
		tokens = append(tokens, str.ToScreamingSnakeCase(p))
	}
	return strings.Join(tokens, "_")
}
