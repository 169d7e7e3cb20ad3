package cmd

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/simpleproc/log"
	"github.com/ardnew/simpleproc/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoContext.With(slog.String("command", "init"))
	}

	confPath := modelVar(ctx, ConfigIdentifier)
	if confPath == "" {
		return ErrWriteConfig.Wrap(ErrNoContext)
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	settings := i.settings(ktx)

	data, err := yaml.MarshalWithOptions(settings, yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("settings", len(settings)),
	)

	return nil
}

// settings collects the application flags with a value, in declaration
// order.
func (i *Init) settings(ktx *kong.Context) yaml.MapSlice {
	var ms yaml.MapSlice

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx.FlagValue(flag)); val != nil {
			ms = append(ms, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return ms
}

// flagValue converts a parsed flag value to its YAML form, or nil if the
// flag is unset.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case fmt.Stringer:
		return v.String()

	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return nil
		}

		return string(text)

	default:
		return fmt.Sprint(v)
	}
}
